package basis

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidArithmetic is returned on division by zero or malformed decimal input.
	ErrInvalidArithmetic = errors.New("invalid arithmetic")
	// ErrLotShortfall is returned when a SELL exceeds the open quantity of its symbol.
	ErrLotShortfall = errors.New("lot shortfall")
	// ErrMissingPriceData is returned when a valuation needs a quote that is not available.
	ErrMissingPriceData = errors.New("missing price data")
	// ErrUnsortedInput is returned when a transaction sequence is not in (date, id) order.
	ErrUnsortedInput = errors.New("unsorted input")
	// ErrInvalidTransaction is returned for records breaking the transaction invariants.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidArgument is returned for out of domain parameters (e.g. a zero DCA amount).
	ErrInvalidArgument = errors.New("invalid argument")
)

// LotShortfallError reports a SELL that cannot be matched against open quantity.
type LotShortfallError struct {
	Symbol    string
	TxID      string
	Date      time.Time
	Requested Quantity
	Available Quantity
}

func (e *LotShortfallError) Error() string {
	return fmt.Sprintf("%v: %s sells %s units on %s (tx %q) but only %s are open",
		ErrLotShortfall, e.Symbol, e.Requested, e.Date.Format(time.DateOnly), e.TxID, e.Available)
}

func (e *LotShortfallError) Is(target error) bool { return target == ErrLotShortfall }

// MissingPriceError reports a symbol without a usable quote on or before a date.
type MissingPriceError struct {
	Symbol string
	On     string
}

func (e *MissingPriceError) Error() string {
	if e.On == "" {
		return fmt.Sprintf("%v: no quote for %s", ErrMissingPriceData, e.Symbol)
	}
	return fmt.Sprintf("%v: no quote for %s on or before %s", ErrMissingPriceData, e.Symbol, e.On)
}

func (e *MissingPriceError) Is(target error) bool { return target == ErrMissingPriceData }

// UnsortedInputError reports the first position where the ordering precondition breaks.
type UnsortedInputError struct {
	Index    int
	Previous string
	Current  string
}

func (e *UnsortedInputError) Error() string {
	return fmt.Sprintf("%v: transaction %q at index %d sorts before %q", ErrUnsortedInput, e.Current, e.Index, e.Previous)
}

func (e *UnsortedInputError) Is(target error) bool { return target == ErrUnsortedInput }
