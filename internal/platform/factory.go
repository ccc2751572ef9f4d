package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/notegrid/pkg/adapters/fs"
	"github.com/aretw0/notegrid/pkg/adapters/memory"
	"github.com/aretw0/notegrid/pkg/board"
	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/layout"
	"github.com/aretw0/notegrid/pkg/search"
)

// Init prepares the storage for uri and returns it. uri is adapter
// specific: a data directory for "fs", ignored by "memory".
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(uri, o)
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	switch o.adapter {
	case "fs":
		if uri == "" {
			uri = "."
		}
		repo := fs.NewRepository(fs.Config{
			Path:         uri,
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
		if err := repo.Initialize(context.Background()); err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// New builds a Board over the storage at uri. The board is not opened.
//
//	b, err := notegrid.New("./notes", notegrid.WithLogger(logger))
func New(uri string, opts ...Option) (*board.Board, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	settings, err := resolveSettings(uri, o)
	if err != nil {
		return nil, err
	}

	key := settings.StorageKey
	if o.storageKey != "" {
		key = o.storageKey
	}
	watch := settings.Watch
	if o.watch != nil {
		watch = *o.watch
	}
	gap := settings.Layout.Gap

	return board.New(board.Config{
		Repository:   repo,
		Key:          key,
		Logger:       o.logger,
		Clock:        o.clock,
		NewID:        o.newID,
		EventBuffer:  o.eventBuffer,
		OrderGap:     settings.Order.Gap,
		Search:       search.Config{MinQueryLength: settings.Search.MinQueryLength},
		Gap:          &gap,
		MinCardWidth: settings.Layout.MinCardWidth,
		Resize: layout.ResizeConfig{
			Quiet:     settings.Resize.Quiet,
			Threshold: settings.Resize.Threshold,
			Logger:    o.logger,
		},
		DragThreshold: settings.Drag.Threshold,
		Watch:         watch,
		OnRelayout:    o.onRelayout,
		OnWatchError:  o.errorHandler,
	})
}

// Open builds and opens a Board. A persistence warning from the initial
// load is returned along with the board.
func Open(ctx context.Context, uri string, opts ...Option) (*board.Board, error) {
	b, err := New(uri, opts...)
	if err != nil {
		return nil, err
	}
	if err := b.Open(ctx); err != nil {
		if core.IsWriteWarning(err) {
			return b, err
		}
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func resolveSettings(uri string, o *options) (Settings, error) {
	if o.settings != nil {
		return *o.settings, nil
	}
	dir := ""
	if o.repository == nil && o.adapter == "fs" {
		dir = uri
		if dir == "" {
			dir = "."
		}
	}
	return LoadSettings(dir)
}
