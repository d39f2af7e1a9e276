package models

import (
	"fmt"
	"strings"
)

// CalendarEvent is an entry in the calendar day list.
type CalendarEvent struct {
	Record
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Assignee      Agent       `json:"assignee,omitempty"`
	Status        EventStatus `json:"status"`
	Category      string      `json:"category,omitempty"`
	ScheduledTime int64       `json:"scheduledTime"`
	Duration      int         `json:"duration,omitempty"` // minutes
	Recurrence    Recurrence  `json:"recurrence"`
}

// Clone returns a deep copy.
func (e *CalendarEvent) Clone() *CalendarEvent {
	c := *e
	return &c
}

// Bucket and SetBucket expose the board column.
func (e *CalendarEvent) Bucket() EventStatus { return e.Status }
func (e *CalendarEvent) SetBucket(s EventStatus) { e.Status = s }
func (e *CalendarEvent) Label() string { return e.Title }

// Facets returns the values board views filter on.
func (e *CalendarEvent) Facets() Facets {
	return Facets{
		Text:     []string{e.Title, e.Description},
		Assignee: string(e.Assignee),
		Category: e.Category,
		Time:     e.ScheduledTime,
	}
}

// EventDraft is the create/edit payload for a calendar event.
type EventDraft struct {
	Title         string      `json:"title" yaml:"title"`
	Description   string      `json:"description" yaml:"description"`
	Assignee      Agent       `json:"assignee,omitempty" yaml:"assignee"`
	Status        EventStatus `json:"status,omitempty" yaml:"status"`
	Category      string      `json:"category" yaml:"category"`
	ScheduledTime int64       `json:"scheduledTime" yaml:"scheduled_time"`
	Duration      int         `json:"duration" yaml:"duration"`
	Recurrence    Recurrence  `json:"recurrence,omitempty" yaml:"recurrence"`
}

// Validate rejects a blank title and unknown enum values.
func (d EventDraft) Validate() error {
	if err := requireTitle(d.Title); err != nil {
		return err
	}
	if err := optionalAgent(d.Assignee); err != nil {
		return err
	}
	if d.Status != "" && !d.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", d.Status)}
	}
	if d.Recurrence != "" && !d.Recurrence.Valid() {
		return &ValidationError{Field: "recurrence", Reason: fmt.Sprintf("unknown recurrence %q", d.Recurrence)}
	}
	if d.Duration < 0 {
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return nil
}

// New builds a record with id from the draft.
func (d EventDraft) New(id string) *CalendarEvent {
	e := &CalendarEvent{Record: Record{ID: id}, Status: d.Status}
	d.Apply(e)
	return e
}

// Apply copies the draft's editable fields onto the record.
func (d EventDraft) Apply(e *CalendarEvent) {
	e.Title = strings.TrimSpace(d.Title)
	e.Description = d.Description
	e.Assignee = d.Assignee
	if d.Status != "" {
		e.Status = d.Status
	}
	e.Category = strings.TrimSpace(d.Category)
	e.ScheduledTime = d.ScheduledTime
	e.Duration = d.Duration
	e.Recurrence = d.Recurrence
	if e.Recurrence == "" {
		e.Recurrence = RecurNone
	}
}
