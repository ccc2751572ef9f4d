package board

import (
	"github.com/aretw0/introspection"
)

// BoardState exposes internal state for observability.
type BoardState struct {
	Store         any     `json:"store"`
	Width         float64 `json:"width,omitempty"`
	Opened        bool    `json:"opened"`
	Closed        bool    `json:"closed"`
	Watching      bool    `json:"watching"`
	Relayouts     int     `json:"relayouts"`
	Gap           float64 `json:"gap"`
	MinCardWidth  float64 `json:"min_card_width"`
	DragThreshold float64 `json:"drag_threshold"`
}

// State implements introspection.Introspectable.
func (b *Board) State() any {
	storeState := b.store.State()

	b.mu.Lock()
	defer b.mu.Unlock()

	return BoardState{
		Store:         storeState,
		Width:         b.width,
		Opened:        b.opened,
		Closed:        b.closed,
		Watching:      b.watching,
		Relayouts:     b.relayoutCnt,
		Gap:           b.gap,
		MinCardWidth:  b.cfg.MinCardWidth,
		DragThreshold: b.cfg.DragThreshold,
	}
}

// ComponentType implements introspection.Component.
func (b *Board) ComponentType() string {
	return "board"
}

var _ introspection.Introspectable = (*Board)(nil)
var _ introspection.Component = (*Board)(nil)
