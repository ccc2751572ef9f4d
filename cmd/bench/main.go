package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/notegrid"
	"github.com/aretw0/notegrid/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	width := flag.Float64("width", 1280, "Container width used for the layout run")
	query := flag.String("query", "note 4", "Query used for the search run")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "notegrid_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d notes in %s...\n", *count, benchDir)
	startGen := time.Now()

	// Records are written without order keys so the first load also
	// measures the migration path.
	records := make([]map[string]any, *count)
	now := time.Now().UnixMilli()
	for i := range records {
		records[i] = map[string]any{
			"id":         fmt.Sprintf("note-%d", i),
			"title":      fmt.Sprintf("Note %d", i),
			"content":    fmt.Sprintf("<p>Benchmark <b>note</b> %d with some text to wrap</p>", i),
			"modifiedAt": now - int64(i),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(benchDir, core.DefaultKey+".json"), data, 0644); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	fmt.Println("Running Open (Run 1 - Migrate)...")
	start := time.Now()
	b, err := notegrid.Open(ctx, benchDir, notegrid.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	openCold := time.Since(start)
	b.Close()

	fmt.Println("Running Open (Run 2 - Normalized)...")
	start = time.Now()
	b, err = notegrid.Open(ctx, benchDir, notegrid.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	openWarm := time.Since(start)
	defer b.Close()

	notes := b.List()

	fmt.Println("Running Reorder (last to first)...")
	start = time.Now()
	if _, err := b.Reorder(ctx, notes[len(notes)-1].ID, 0); err != nil {
		panic(err)
	}
	reorder := time.Since(start)

	fmt.Println("Running Layout...")
	heights := make([]float64, len(notes))
	for i := range heights {
		heights[i] = float64(80 + (i*37)%160)
	}
	start = time.Now()
	res := b.Layout(*width, heights)
	pack := time.Since(start)

	fmt.Println("Running Search...")
	start = time.Now()
	results := b.Search(*query)
	searchTime := time.Since(start)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", len(notes))
	fmt.Printf("  Open (migrate):    %v\n", openCold)
	fmt.Printf("  Open (normalized): %v\n", openWarm)
	fmt.Printf("  Reorder:           %v\n", reorder)
	fmt.Printf("  Layout:            %v (%d columns, height %.0f)\n", pack, res.Columns, res.Height)
	fmt.Printf("  Search:            %v (%d matches for %q)\n", searchTime, len(results), *query)
	fmt.Printf("--------------------------------------------------\n")
}
