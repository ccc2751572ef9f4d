package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/richtext"
)

const previewLength = 60

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func pickFormat(asJSON, asYAML bool) (format, error) {
	switch {
	case asJSON && asYAML:
		return "", fmt.Errorf("--json and --yaml are mutually exclusive")
	case asJSON:
		return formatJSON, nil
	case asYAML:
		return formatYAML, nil
	}
	return formatText, nil
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, f format, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", f)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printNotes(w io.Writer, notes []core.Note) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tCOLOR\tTITLE\tPREVIEW")
	for i, n := range notes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, n.ID, n.Color, n.Title, richtext.Preview(n, previewLength))
	}
	return tw.Flush()
}

func printNote(w io.Writer, n core.Note) {
	fmt.Fprintf(w, "%s  %s [%s]\n", n.ID, n.Title, n.Color)
}
