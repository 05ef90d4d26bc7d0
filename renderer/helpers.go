package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/basis"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

func factor(f basis.Factor) string {
	if f.Infinite {
		return "∞"
	}
	return f.Round(2).Decimal().StringFixed(2)
}

func days(r basis.Ratio) string { return r.Round(1).Decimal().StringFixed(1) }
