package basis

import (
	"fmt"
	"strings"
)

// CostBasisMethod defines the method for calculating cost basis.
type CostBasisMethod int

const (
	// FIFO (First-In, First-Out) calculates the cost basis by assuming the first shares purchased are the first ones sold.
	FIFO CostBasisMethod = iota
	// WeightedAverage calculates the cost basis by averaging the cost of all open shares.
	WeightedAverage
)

func (m CostBasisMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case WeightedAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "average", "avg", "weighted-average", "weighted_average":
		return WeightedAverage, nil
	default:
		return 0, fmt.Errorf("%w: unknown cost basis method: %q", ErrInvalidArgument, s)
	}
}

func (m CostBasisMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CostBasisMethod) UnmarshalText(text []byte) error {
	v, err := ParseCostBasisMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
