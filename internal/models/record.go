// Package models defines the entity records shown on the Mission Control
// boards and the closed enums they are bucketed by.
package models

import (
	"fmt"
	"slices"
	"strings"

	perrors "github.com/p-blackswan/mission-control/internal/errors"
)

// Record carries the identity and timestamps every entity kind shares.
// Timestamps are epoch milliseconds.
type Record struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Meta gives generic code access to the embedded record.
func (r *Record) Meta() *Record { return r }

// Facets are the values derived views filter and sort on.
type Facets struct {
	Text       []string // searched case-insensitively
	Assignee   string
	Category   string
	Importance string
	Action     string
	Time       int64 // timestamp used by date-range filters
	Pinned     bool
}

// ValidationError reports a draft that cannot be saved.
type ValidationError struct {
	Field  string
	Reason string
}

// Error names the field and the reason.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap makes ValidationError match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return perrors.ErrInvalidInput }

func requireTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	return nil
}

func requireAgent(a Agent) error {
	if a == "" {
		return &ValidationError{Field: "assignee", Reason: "required"}
	}
	return optionalAgent(a)
}

func optionalAgent(a Agent) error {
	if a != "" && !a.Valid() {
		return &ValidationError{Field: "assignee", Reason: fmt.Sprintf("unknown agent %q", a)}
	}
	return nil
}

func optionalPriority(field string, p Priority) error {
	if p != "" && !p.Valid() {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", p)}
	}
	return nil
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
