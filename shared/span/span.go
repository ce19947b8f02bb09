// Package span keeps the block bookkeeping for functions whose flat input
// vector is carved into contiguous blocks of fixed widths. A slice table is
// computed once from the block widths and stays fixed for the lifetime of
// whatever owns it.
package span

import (
	"errors"
	"fmt"
)

var ErrBadWidth = errors.New("block widths must be positive")

// Span is one half-open range [Start, End) within a flat vector.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }

// Of returns the sub-slice of flat covered by s. The result aliases flat.
func (s Span) Of(flat []float64) []float64 {
	return flat[s.Start:s.End]
}

// Partition builds the slice table for the given block widths via prefix
// sums, returning the table and the total flat width.
func Partition(widths ...int) ([]Span, int, error) {
	table := make([]Span, len(widths))
	total := 0
	for i, w := range widths {
		if w <= 0 {
			return nil, 0, fmt.Errorf("%w: widths[%d] = %d", ErrBadWidth, i, w)
		}
		table[i] = Span{Start: total, End: total + w}
		total += w
	}
	return table, total, nil
}

// Concat flattens the given blocks into one freshly allocated vector,
// preserving block order.
func Concat(blocks ...[]float64) []float64 {
	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	flat := make([]float64, 0, total)
	for _, b := range blocks {
		flat = append(flat, b...)
	}
	return flat
}
