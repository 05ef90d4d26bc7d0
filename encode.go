package basis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// This file encodes ledgers as JSONL, one transaction per line, so that they stay
// human-readable and git-friendly. Decimals are written as strings.

// DecodeTransactions reads a JSONL stream of transactions. Empty lines are ignored.
// name is for error messages only.
func DecodeTransactions(name string, r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, i, err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return txs, nil
}

// EncodeTransactions writes txs as JSONL, in the given order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		line, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("cannot encode transaction %q: %w", tx.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
