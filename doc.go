// Package notegrid is the composition root of a personal note board: notes
// you create, color, search and drag into any order, shown as a masonry grid
// of cards.
//
// It connects the core (pkg/core, pkg/order, pkg/search, pkg/layout,
// pkg/drag) with a storage adapter behind core.Repository. The default
// adapter keeps every note in a single JSON file of a data directory and can
// watch it for edits made by other processes.
//
// Rendering is left to the caller: it measures cards, passes their heights
// to Board.Layout and applies the returned positions. The board asks for a
// new layout through the WithRelayout callback when notes change or the
// container is resized.
//
// Usage:
//
//	b, err := notegrid.Open(ctx, "./notes",
//		notegrid.WithLogger(logger),
//		notegrid.WithRelayout(render),
//	)
//	if err != nil && !notegrid.IsWriteWarning(err) {
//		return err
//	}
//	defer b.Close()
//
//	n, err := b.Create(ctx, notegrid.Draft{Title: "Groceries"})
//	moved, err := b.Reorder(ctx, n.ID, 3)
//	results := b.Search("groc")
package notegrid
