package models

import (
	"fmt"
	"slices"
	"strings"
)

// Task is a card on the tasks board.
type Task struct {
	Record
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Assignee    Agent      `json:"assignee"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags,omitempty"`
	DueDate     int64      `json:"dueDate,omitempty"`
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// Bucket and SetBucket expose the board column.
func (t *Task) Bucket() TaskStatus { return t.Status }
func (t *Task) SetBucket(s TaskStatus) { t.Status = s }
func (t *Task) SetPriority(p Priority) { t.Priority = p }
func (t *Task) Label() string { return t.Title }

// Facets returns the values board views filter on.
func (t *Task) Facets() Facets {
	return Facets{
		Text:       append([]string{t.Title, t.Description}, t.Tags...),
		Assignee:   string(t.Assignee),
		Importance: string(t.Priority),
		Time:       t.UpdatedAt,
	}
}

// TaskDraft is the create/edit payload for a task.
type TaskDraft struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Assignee    Agent      `json:"assignee" yaml:"assignee"`
	Status      TaskStatus `json:"status,omitempty" yaml:"status"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags"`
	DueDate     int64      `json:"dueDate,omitempty" yaml:"due_date"`
}

// Validate rejects a blank title and unknown enum values.
func (d TaskDraft) Validate() error {
	if err := requireTitle(d.Title); err != nil {
		return err
	}
	if err := requireAgent(d.Assignee); err != nil {
		return err
	}
	if d.Status != "" && !d.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", d.Status)}
	}
	return optionalPriority("priority", d.Priority)
}

// New builds a record with id from the draft.
func (d TaskDraft) New(id string) *Task {
	t := &Task{Record: Record{ID: id}, Status: d.Status}
	d.Apply(t)
	return t
}

// Apply replaces every editable field. An empty status or priority keeps
// the current value.
func (d TaskDraft) Apply(t *Task) {
	t.Title = strings.TrimSpace(d.Title)
	t.Description = d.Description
	t.Assignee = d.Assignee
	if d.Status != "" {
		t.Status = d.Status
	}
	if d.Priority != "" {
		t.Priority = d.Priority
	} else if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.Tags = cleanTags(d.Tags)
	t.DueDate = d.DueDate
}
