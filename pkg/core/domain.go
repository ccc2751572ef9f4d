// Package core holds the note domain: the Note entity, its palette, the
// persisted record format and the Store that owns the collection.
package core

import (
	"fmt"
	"math"
	"strings"
)

// ContentType tells how a note's content must be interpreted.
type ContentType string

const (
	ContentRich  ContentType = "rich"
	ContentPlain ContentType = "plain"
)

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	return c == ContentRich || c == ContentPlain
}

// Color is a background color identifier from the fixed palette.
type Color string

const (
	ColorDefault Color = "default"
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
)

// Palette lists every color a note may carry, default first.
var Palette = []Color{
	ColorDefault,
	ColorRed,
	ColorOrange,
	ColorYellow,
	ColorGreen,
	ColorBlue,
	ColorPurple,
}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// ParseColor maps a user supplied name onto the palette.
// Unknown names fall back to ColorDefault and ok is false.
func ParseColor(name string) (c Color, ok bool) {
	c = Color(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return ColorDefault, false
	}
	return c, true
}

// Note is the central entity of the domain.
// Every field is populated once the note is owned by a Store.
type Note struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Content     string      `json:"content" yaml:"content"`
	ContentType ContentType `json:"contentType" yaml:"contentType"`
	Color       Color       `json:"backgroundColor" yaml:"backgroundColor"`
	OrderKey    float64     `json:"orderKey" yaml:"orderKey"`
	CreatedAt   int64       `json:"createdAt" yaml:"createdAt"`   // epoch milliseconds
	ModifiedAt  int64       `json:"modifiedAt" yaml:"modifiedAt"` // epoch milliseconds
}

// Draft carries the caller supplied fields of a note being created.
// Zero values take the palette and content type defaults.
type Draft struct {
	Title       string
	Content     string
	ContentType ContentType
	Color       Color
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Content     *string
	ContentType *ContentType
	Color       *Color
	OrderKey    *float64
}

// finite reports whether k can be used as an order key. NaN and infinities
// cannot be serialized.
func finite(k float64) bool {
	return !math.IsNaN(k) && !math.IsInf(k, 0)
}

// apply merges p into n and re-applies defaults for the enum fields.
func (p Patch) apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.ContentType != nil {
		n.ContentType = *p.ContentType
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.OrderKey != nil {
		n.OrderKey = *p.OrderKey
	}
	if !n.ContentType.Valid() {
		n.ContentType = ContentRich
	}
	if !n.Color.Valid() {
		n.Color = ColorDefault
	}
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	EventReload EventType = "RELOAD"
)

// Event represents a change in the store or in the underlying storage.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix milliseconds
}

// String makes Event usable as a lifecycle.Event.
func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
