package models

import (
	"slices"
	"strings"
)

// MemoryEntry is a note in the memory view. It has no status; pinned entries
// sort first.
type MemoryEntry struct {
	Record
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags,omitempty"`
	Importance Priority `json:"importance"`
	Pinned     bool     `json:"pinned"`
	WordCount  int      `json:"wordCount"`
	File       string   `json:"file,omitempty"`
}

// Clone returns a deep copy.
func (m *MemoryEntry) Clone() *MemoryEntry {
	c := *m
	c.Tags = slices.Clone(m.Tags)
	return &c
}

func (m *MemoryEntry) Label() string { return m.Title }

// Facets returns the values board views filter on.
func (m *MemoryEntry) Facets() Facets {
	return Facets{
		Text:       append([]string{m.Title, m.Content}, m.Tags...),
		Category:   m.Category,
		Importance: string(m.Importance),
		Time:       m.UpdatedAt,
		Pinned:     m.Pinned,
	}
}

// DefaultMemoryCategory is used when a draft names none.
const DefaultMemoryCategory = "note"

// MemoryDraft is the create/edit payload for a memory entry.
type MemoryDraft struct {
	Title      string   `json:"title" yaml:"title"`
	Content    string   `json:"content" yaml:"content"`
	Category   string   `json:"category" yaml:"category"`
	Tags       []string `json:"tags,omitempty" yaml:"tags"`
	Importance Priority `json:"importance,omitempty" yaml:"importance"`
}

// Validate rejects a blank title and unknown enum values.
func (d MemoryDraft) Validate() error {
	if err := requireTitle(d.Title); err != nil {
		return err
	}
	return optionalPriority("importance", d.Importance)
}

// New builds a record with id from the draft.
func (d MemoryDraft) New(id string) *MemoryEntry {
	m := &MemoryEntry{Record: Record{ID: id}}
	d.Apply(m)
	return m
}

// Apply replaces every editable field. Pinned and File are not editable.
func (d MemoryDraft) Apply(m *MemoryEntry) {
	m.Title = strings.TrimSpace(d.Title)
	m.Content = d.Content
	m.Category = strings.TrimSpace(d.Category)
	if m.Category == "" {
		m.Category = DefaultMemoryCategory
	}
	m.Tags = cleanTags(d.Tags)
	m.Importance = d.Importance
	if m.Importance == "" {
		m.Importance = PriorityMedium
	}
	m.WordCount = WordCount(d.Content)
}
