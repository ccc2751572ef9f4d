package layout_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/notegrid/pkg/layout"
)

func TestPack_ThreeCardsTwoColumns(t *testing.T) {
	// 2 columns need at least 2*200 + 24 = 424.
	res := layout.Pack(layout.Params{
		ContainerWidth: 500,
		Heights:        []float64{100, 50, 80},
		Gap:            24,
		MinCardWidth:   200,
	})

	require.Equal(t, 2, res.Columns)
	assert.Equal(t, 238.0, res.CardWidth)

	assert.Equal(t, layout.Position{Column: 0, X: 0, Y: 0, Width: 238}, res.Positions[0])
	assert.Equal(t, layout.Position{Column: 1, X: 262, Y: 0, Width: 238}, res.Positions[1])
	assert.Equal(t, layout.Position{Column: 1, X: 262, Y: 74, Width: 238}, res.Positions[2])

	assert.Equal(t, []float64{100, 154}, res.ColumnHeights)
	assert.Equal(t, 154.0, res.Height)
}

func TestColumnCount(t *testing.T) {
	tests := []struct {
		name   string
		width  float64
		gap    float64
		min    float64
		expect int
	}{
		{"exact fit of two", 424, 24, 200, 2},
		{"just short of two", 423, 24, 200, 1},
		{"narrower than one card", 50, 24, 200, 1},
		{"zero width", 0, 24, 200, 1},
		{"negative width", -100, 24, 200, 1},
		{"no gap", 1000, 0, 250, 4},
		{"zero sizes", 1000, 0, 0, 1},
		{"wide", 1920, 24, 240, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, layout.ColumnCount(tt.width, tt.gap, tt.min))
		})
	}
}

func TestColumnCount_LargestFit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := float64(rapid.IntRange(0, 4000).Draw(t, "width"))
		gap := float64(rapid.IntRange(0, 64).Draw(t, "gap"))
		minWidth := float64(rapid.IntRange(1, 600).Draw(t, "min"))

		n := float64(layout.ColumnCount(width, gap, minWidth))
		if n > 1 && n*minWidth+(n-1)*gap > width {
			t.Fatalf("%v columns do not fit in %v", n, width)
		}
		if (n+1)*minWidth+n*gap <= width {
			t.Fatalf("%v columns would fit in %v, got %v", n+1, width, n)
		}
	})
}

func TestPack_DegenerateInput(t *testing.T) {
	t.Run("No Cards", func(t *testing.T) {
		res := layout.Pack(layout.Params{ContainerWidth: 800, Gap: 24, MinCardWidth: 200})
		assert.Empty(t, res.Positions)
		assert.Zero(t, res.Height)
		assert.Equal(t, 3, res.Columns)
	})

	t.Run("Zero Height Cards", func(t *testing.T) {
		res := layout.Pack(layout.Params{ContainerWidth: 800, Heights: []float64{0, 0, 0, 0}, Gap: 10, MinCardWidth: 200})
		assert.Equal(t, 10.0, res.Positions[3].Y, "fourth card stacks one gap under a zero height card")
		assert.Equal(t, 10.0, res.Height)
	})

	t.Run("Negative And NaN Heights", func(t *testing.T) {
		res := layout.Pack(layout.Params{ContainerWidth: 100, Heights: []float64{-5, math.NaN(), 10}, Gap: 0, MinCardWidth: 100})
		assert.Equal(t, 10.0, res.Height)
		assert.Equal(t, 0.0, res.Positions[2].Y)
	})

	t.Run("Container Narrower Than Card", func(t *testing.T) {
		res := layout.Pack(layout.Params{ContainerWidth: 120, Heights: []float64{10}, Gap: 24, MinCardWidth: 200})
		assert.Equal(t, 1, res.Columns)
		assert.Equal(t, 120.0, res.CardWidth)
	})
}

func TestPack_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := layout.Params{
			ContainerWidth: rapid.Float64Range(0, 3000).Draw(t, "width"),
			Heights:        rapid.SliceOfN(rapid.Float64Range(0, 800), 0, 60).Draw(t, "heights"),
			Gap:            rapid.Float64Range(0, 48).Draw(t, "gap"),
			MinCardWidth:   rapid.Float64Range(1, 500).Draw(t, "min"),
		}

		res := layout.Pack(p)
		again := layout.Pack(p)
		if !assert.ObjectsAreEqual(res, again) {
			t.Fatalf("layout is not deterministic")
		}

		sums := make([]float64, res.Columns)
		counts := make([]int, res.Columns)
		bottoms := make([]float64, res.Columns)
		for i, pos := range res.Positions {
			if pos.Column < 0 || pos.Column >= res.Columns {
				t.Fatalf("card %d in column %d of %d", i, pos.Column, res.Columns)
			}
			if pos.Y < bottoms[pos.Column]-1e-6 {
				t.Fatalf("card %d overlaps the previous card of column %d", i, pos.Column)
			}
			bottoms[pos.Column] = pos.Y + p.Heights[i] + p.Gap
			sums[pos.Column] += p.Heights[i] + p.Gap
			counts[pos.Column]++
		}

		tallest := 0.0
		for c := range sums {
			want := 0.0
			if counts[c] > 0 {
				want = math.Max(0, sums[c]-p.Gap)
			}
			if math.Abs(res.ColumnHeights[c]-want) > 1e-6 {
				t.Fatalf("column %d height %v, want %v", c, res.ColumnHeights[c], want)
			}
			tallest = math.Max(tallest, want)
		}
		if math.Abs(res.Height-tallest) > 1e-6 {
			t.Fatalf("container height %v, want %v", res.Height, tallest)
		}
	})
}

func TestStagger(t *testing.T) {
	assert.Nil(t, layout.Stagger(0, time.Millisecond))
	assert.Equal(t, []time.Duration{0, 20 * time.Millisecond, 40 * time.Millisecond}, layout.Stagger(3, 20*time.Millisecond))
}
