// Package layout computes masonry card positions from rendered sizes.
//
// The packer is pure geometry: heights and widths in, positions out. Reading
// sizes from rendered cards and applying the result back is left to the
// rendering adapter.
package layout

import (
	"math"
	"time"
)

const (
	DefaultGap          = 24
	DefaultMinCardWidth = 240
)

// Params is the input of a layout pass.
type Params struct {
	ContainerWidth float64
	Heights        []float64 // rendered card heights, in display order
	Gap            float64
	MinCardWidth   float64
}

// Position locates one card.
type Position struct {
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
}

// Result is the output of a layout pass.
type Result struct {
	Columns       int        `json:"columns"`
	CardWidth     float64    `json:"cardWidth"`
	Positions     []Position `json:"positions"`
	ColumnHeights []float64  `json:"columnHeights"`
	Height        float64    `json:"height"` // container height
}

// ColumnCount returns the largest number of columns that keeps every column
// at least minCardWidth wide with gap-wide gutters between them, never
// less than one.
//
// n columns fit when n*minCardWidth + (n-1)*gap <= containerWidth, which
// gives floor((containerWidth + gap) / (minCardWidth + gap)). There is no
// gutter after the last column, so a container of exactly 2*min + gap
// holds two cards.
func ColumnCount(containerWidth, gap, minCardWidth float64) int {
	gap = sanitize(gap)
	unit := sanitize(minCardWidth) + gap
	if unit <= 0 {
		return 1
	}
	n := math.Floor((sanitize(containerWidth) + gap) / unit)
	if n < 1 || math.IsInf(n, 0) {
		return 1
	}
	return int(n)
}

// Pack places every card into the currently shortest column, lowest index
// first on ties, in input order. It is greedy and never backtracks.
// Identical input always yields identical output.
func Pack(p Params) Result {
	gap := sanitize(p.Gap)
	width := sanitize(p.ContainerWidth)
	columns := ColumnCount(width, gap, p.MinCardWidth)

	cardWidth := (width - float64(columns-1)*gap) / float64(columns)
	if cardWidth < 0 {
		cardWidth = 0
	}

	acc := make([]float64, columns)
	positions := make([]Position, len(p.Heights))

	for i, h := range p.Heights {
		col := shortest(acc)
		positions[i] = Position{
			Column: col,
			X:      float64(col) * (cardWidth + gap),
			Y:      acc[col],
			Width:  cardWidth,
		}
		acc[col] += sanitize(h) + gap
	}

	heights := make([]float64, columns)
	tallest := 0.0
	for i, a := range acc {
		if a > 0 {
			heights[i] = math.Max(0, a-gap)
		}
		tallest = math.Max(tallest, heights[i])
	}

	return Result{
		Columns:       columns,
		CardWidth:     cardWidth,
		Positions:     positions,
		ColumnHeights: heights,
		Height:        tallest,
	}
}

func shortest(acc []float64) int {
	best := 0
	for i := 1; i < len(acc); i++ {
		if acc[i] < acc[best] {
			best = i
		}
	}
	return best
}

// sanitize maps negative and NaN sizes to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Stagger returns the delay after which each of n cards should be moved in
// smooth mode. It only affects presentation timing; positions come from Pack.
func Stagger(n int, step time.Duration) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Duration(i) * step
	}
	return delays
}
