package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LegacyOrderStep is the spacing, in milliseconds, of the order keys
// synthesized for records that have neither an order key nor a
// modification time.
const LegacyOrderStep = 1000

// Record is the persisted shape of a note. Pointer fields distinguish a
// missing field from its zero value so that legacy data can be migrated.
type Record struct {
	ID          *string  `json:"id,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Content     *string  `json:"content,omitempty"`
	ContentType *string  `json:"contentType,omitempty"`
	Color       *string  `json:"backgroundColor,omitempty"`
	OrderKey    *float64 `json:"orderKey,omitempty"`
	CreatedAt   *int64   `json:"createdAt,omitempty"`
	ModifiedAt  *int64   `json:"modifiedAt,omitempty"`
}

// DecodeRecords parses a persisted blob. A JSON null decodes to no records.
func DecodeRecords(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty blob")
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return records, nil
}

// EncodeNotes serializes notes in the persisted record format.
func EncodeNotes(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	return json.Marshal(notes)
}

// Normalize turns decoded records into fully populated notes. It is the
// single migration step for legacy data:
//
//   - missing or unknown backgroundColor becomes ColorDefault
//   - missing or unknown contentType becomes ContentRich
//   - missing orderKey becomes modifiedAt, or now - index*LegacyOrderStep
//   - missing timestamps are derived from each other, or from now
//   - missing ids are generated, repeated ids keep their first occurrence
//
// changed reports whether any record had to be corrected.
func Normalize(records []Record, now time.Time, newID func() string) (notes []Note, changed bool) {
	nowMs := now.UnixMilli()
	seen := make(map[string]bool, len(records))
	notes = make([]Note, 0, len(records))

	for i, r := range records {
		var n Note

		if r.ID != nil && *r.ID != "" {
			n.ID = *r.ID
		} else {
			n.ID = newID()
			changed = true
		}
		if seen[n.ID] {
			changed = true
			continue
		}
		seen[n.ID] = true

		if r.Title != nil {
			n.Title = *r.Title
		} else {
			changed = true
		}
		if r.Content != nil {
			n.Content = *r.Content
		} else {
			changed = true
		}

		n.ContentType = ContentRich
		if r.ContentType != nil && ContentType(*r.ContentType).Valid() {
			n.ContentType = ContentType(*r.ContentType)
		} else {
			changed = true
		}

		n.Color = ColorDefault
		if r.Color != nil && Color(*r.Color).Valid() {
			n.Color = Color(*r.Color)
		} else {
			changed = true
		}

		switch {
		case r.OrderKey != nil:
			n.OrderKey = *r.OrderKey
		case r.ModifiedAt != nil:
			n.OrderKey = float64(*r.ModifiedAt)
			changed = true
		default:
			n.OrderKey = float64(nowMs - int64(i)*LegacyOrderStep)
			changed = true
		}

		switch {
		case r.ModifiedAt != nil:
			n.ModifiedAt = *r.ModifiedAt
		case r.CreatedAt != nil:
			n.ModifiedAt = *r.CreatedAt
			changed = true
		default:
			n.ModifiedAt = nowMs
			changed = true
		}

		if r.CreatedAt != nil {
			n.CreatedAt = *r.CreatedAt
		} else {
			n.CreatedAt = n.ModifiedAt
			changed = true
		}

		notes = append(notes, n)
	}

	return notes, changed
}
