package model

import (
	"time"
)

// Field limits, mirrored by the opinions table columns.
const (
	MaxTitleLength   = 128
	MaxSourceLength  = 256
	MaxAddedByLength = 64
)

// Opinion is a single movie opinion record.
type Opinion struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`         // Unique across all opinions
	Source    *string   `json:"source" db:"source"`     // Link to a review, optional
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	AddedBy   *string   `json:"added_by" db:"added_by"` // Free-form author label
}

// OpinionPatch lists the fields of a partial update. Nil means "keep".
type OpinionPatch struct {
	Title   *string
	Text    *string
	Source  *string
	AddedBy *string
}

// IsEmpty reports whether the patch changes nothing.
func (p OpinionPatch) IsEmpty() bool {
	return p.Title == nil && p.Text == nil && p.Source == nil && p.AddedBy == nil
}

// ApplyTo copies the non-nil fields onto o.
func (p OpinionPatch) ApplyTo(o *Opinion) {
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Text != nil {
		o.Text = *p.Text
	}
	if p.Source != nil {
		o.Source = p.Source
	}
	if p.AddedBy != nil {
		o.AddedBy = p.AddedBy
	}
}

// HasSource checks if opinion links to a review
func (o *Opinion) HasSource() bool {
	return o.Source != nil && *o.Source != ""
}
