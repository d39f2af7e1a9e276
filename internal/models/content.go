package models

import (
	"fmt"
	"strings"
)

// ContentItem is a card in the content pipeline.
type ContentItem struct {
	Record
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Assignee     Agent        `json:"assignee"`
	Stage        ContentStage `json:"stage"`
	Priority     Priority     `json:"priority"`
	Platform     string       `json:"platform,omitempty"`
	ScriptText   string       `json:"scriptText,omitempty"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Views        int64        `json:"views,omitempty"`
	Engagement   float64      `json:"engagement,omitempty"`
}

// Clone returns a deep copy.
func (c *ContentItem) Clone() *ContentItem {
	cp := *c
	return &cp
}

// Bucket and SetBucket expose the board column.
func (c *ContentItem) Bucket() ContentStage { return c.Stage }
func (c *ContentItem) SetBucket(s ContentStage) { c.Stage = s }
func (c *ContentItem) SetPriority(p Priority) { c.Priority = p }
func (c *ContentItem) Label() string { return c.Title }

// Facets returns the values board views filter on.
func (c *ContentItem) Facets() Facets {
	return Facets{
		Text:       []string{c.Title, c.Description, c.ScriptText},
		Assignee:   string(c.Assignee),
		Category:   c.Platform,
		Importance: string(c.Priority),
		Time:       c.UpdatedAt,
	}
}

// ContentDraft is the create/edit payload for a content item.
type ContentDraft struct {
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Assignee     Agent        `json:"assignee" yaml:"assignee"`
	Stage        ContentStage `json:"stage,omitempty" yaml:"stage"`
	Priority     Priority     `json:"priority,omitempty" yaml:"priority"`
	Platform     string       `json:"platform" yaml:"platform"`
	ScriptText   string       `json:"scriptText" yaml:"script_text"`
	ThumbnailURL string       `json:"thumbnailUrl" yaml:"thumbnail_url"`
	Views        int64        `json:"views" yaml:"views"`
	Engagement   float64      `json:"engagement" yaml:"engagement"`
}

// Validate rejects a blank title and unknown enum values.
func (d ContentDraft) Validate() error {
	if err := requireTitle(d.Title); err != nil {
		return err
	}
	if err := requireAgent(d.Assignee); err != nil {
		return err
	}
	if d.Stage != "" && !d.Stage.Valid() {
		return &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", d.Stage)}
	}
	if d.Views < 0 {
		return &ValidationError{Field: "views", Reason: "must not be negative"}
	}
	return optionalPriority("priority", d.Priority)
}

// New builds a record with id from the draft.
func (d ContentDraft) New(id string) *ContentItem {
	c := &ContentItem{Record: Record{ID: id}, Stage: d.Stage}
	d.Apply(c)
	return c
}

// Apply copies the draft's editable fields onto the record.
func (d ContentDraft) Apply(c *ContentItem) {
	c.Title = strings.TrimSpace(d.Title)
	c.Description = d.Description
	c.Assignee = d.Assignee
	if d.Stage != "" {
		c.Stage = d.Stage
	}
	if d.Priority != "" {
		c.Priority = d.Priority
	} else if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	c.Platform = strings.TrimSpace(d.Platform)
	c.ScriptText = d.ScriptText
	c.ThumbnailURL = d.ThumbnailURL
	c.Views = d.Views
	c.Engagement = d.Engagement
}
