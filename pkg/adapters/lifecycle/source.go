// Package lifecycle exposes note store changes as a lifecycle.Source so a
// host application can route them with the rest of its events.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notegrid/pkg/core"
)

type noteSource struct {
	events <-chan core.Event
	types  map[core.EventType]bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source forwarding store events. When types
// are given, only events of those types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) lifecycle.Source {
	var filter map[core.EventType]bool
	if len(types) > 0 {
		filter = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}
	return &noteSource{
		events: events,
		types:  filter,
		out:    make(chan lifecycle.Event),
	}
}

func (s *noteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the store closes its channel.
func (s *noteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.types != nil && !s.types[e.Type] {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
