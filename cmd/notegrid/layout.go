package main

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegrid"
	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/layout"
	"github.com/aretw0/notegrid/pkg/richtext"
)

// Rough card metrics used when no heights are given.
const (
	cardChrome = 56 // title bar and padding
	lineHeight = 20
	charWidth  = 8
)

type placedCard struct {
	ID       string          `json:"id" yaml:"id"`
	Title    string          `json:"title" yaml:"title"`
	Height   float64         `json:"height" yaml:"height"`
	Position layout.Position `json:"position" yaml:"position"`
}

type layoutReport struct {
	Columns   int          `json:"columns" yaml:"columns"`
	CardWidth float64      `json:"cardWidth" yaml:"cardWidth"`
	Height    float64      `json:"height" yaml:"height"`
	Cards     []placedCard `json:"cards" yaml:"cards"`
}

func newLayoutCmd(c *cli) *cobra.Command {
	var (
		width    float64
		gap      float64
		minWidth float64
		heights  []float64
		asJSON   bool
		asYAML   bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Pack the notes into a masonry grid for a container width",
		Long: `Pack the notes, in display order, into the shortest column of a grid.
Card heights are taken from --heights when given, otherwise estimated from
each note's text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(asJSON, asYAML)
			if err != nil {
				return err
			}
			if width <= 0 {
				return fmt.Errorf("--width must be positive")
			}

			dir, err := c.dataDir()
			if err != nil {
				return err
			}
			settings, err := notegrid.LoadSettings(dir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("gap") {
				settings.Layout.Gap = gap
			}
			if cmd.Flags().Changed("min-width") {
				settings.Layout.MinCardWidth = minWidth
			}

			b, err := c.open(cmd.Context(), notegrid.WithConfig(settings))
			if err != nil {
				return err
			}
			defer b.Close()

			notes := b.List()
			if len(heights) == 0 {
				columns := layout.ColumnCount(width, settings.Layout.Gap, settings.Layout.MinCardWidth)
				cardWidth := (width - float64(columns-1)*settings.Layout.Gap) / float64(columns)
				heights = estimateHeights(notes, cardWidth)
			} else if len(heights) != len(notes) {
				return fmt.Errorf("got %d heights for %d notes", len(heights), len(notes))
			}

			res := b.Layout(width, heights)
			report := layoutReport{Columns: res.Columns, CardWidth: res.CardWidth, Height: res.Height}
			for i, n := range notes {
				report.Cards = append(report.Cards, placedCard{
					ID:       n.ID,
					Title:    n.Title,
					Height:   heights[i],
					Position: res.Positions[i],
				})
			}

			if f != formatText {
				return encode(cmd.OutOrStdout(), f, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d columns, card width %g, height %g\n", report.Columns, report.CardWidth, report.Height)
			tw := newTable(out)
			fmt.Fprintln(tw, "#\tID\tCOL\tX\tY\tH\tTITLE")
			for i, card := range report.Cards {
				p := card.Position
				fmt.Fprintf(tw, "%d\t%s\t%d\t%g\t%g\t%g\t%s\n", i, card.ID, p.Column, p.X, p.Y, card.Height, card.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Float64VarP(&width, "width", "w", 0, "Container width in pixels")
	cmd.Flags().Float64Var(&gap, "gap", layout.DefaultGap, "Gap between cards")
	cmd.Flags().Float64Var(&minWidth, "min-width", layout.DefaultMinCardWidth, "Minimum card width")
	cmd.Flags().Float64SliceVar(&heights, "heights", nil, "Card heights in display order, comma separated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")
	_ = cmd.MarkFlagRequired("width")
	return cmd
}

// estimateHeights guesses rendered heights from the amount of text that has
// to wrap inside a card of cardWidth.
func estimateHeights(notes []core.Note, cardWidth float64) []float64 {
	perLine := math.Max(1, math.Floor(cardWidth/charWidth))
	heights := make([]float64, len(notes))
	for i, n := range notes {
		runes := utf8.RuneCountInString(richtext.Extractor{}.PlainText(n))
		lines := math.Ceil(float64(runes) / perLine)
		heights[i] = cardChrome + lines*lineHeight
	}
	return heights
}
