// Package seed loads first-run sample data from a YAML file.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/p-blackswan/mission-control/internal/board"
	"github.com/p-blackswan/mission-control/internal/models"
)

// File is the seed document.
type File struct {
	Tasks    []models.TaskDraft    `yaml:"tasks"`
	Content  []models.ContentDraft `yaml:"content"`
	Events   []models.EventDraft   `yaml:"events"`
	Memories []models.MemoryDraft  `yaml:"memories"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(raw []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// Read loads and parses path.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(raw)
}

// Targets are the boards a seed is applied to. Nil targets are skipped.
type Targets struct {
	Tasks    *board.Controller[*models.Task, models.TaskStatus]
	Content  *board.Controller[*models.ContentItem, models.ContentStage]
	Calendar *board.Controller[*models.CalendarEvent, models.EventStatus]
	Memories *board.Editor[*models.MemoryEntry]
}

// Result counts the records created per kind.
type Result struct {
	Tasks    int
	Content  int
	Events   int
	Memories int
}

// Apply creates the seed records in every target that is still empty, so
// user data is never mixed with samples.
func Apply(ctx context.Context, f *File, t Targets, logger zerolog.Logger) (Result, error) {
	var (
		res  Result
		errs []error
	)
	if t.Tasks != nil && t.Tasks.Store().Len() == 0 {
		res.Tasks, errs = create(ctx, t.Tasks.Editor, f.Tasks, errs)
	}
	if t.Content != nil && t.Content.Store().Len() == 0 {
		res.Content, errs = create(ctx, t.Content.Editor, f.Content, errs)
	}
	if t.Calendar != nil && t.Calendar.Store().Len() == 0 {
		res.Events, errs = create(ctx, t.Calendar.Editor, f.Events, errs)
	}
	if t.Memories != nil && t.Memories.Store().Len() == 0 {
		res.Memories, errs = create(ctx, t.Memories, f.Memories, errs)
	}
	logger.Info().
		Int("tasks", res.Tasks).Int("content", res.Content).
		Int("events", res.Events).Int("memories", res.Memories).
		Msg("seed applied")
	return res, errors.Join(errs...)
}

func create[T board.Entity[T], D board.Draft[T]](ctx context.Context, ed *board.Editor[T], drafts []D, errs []error) (int, []error) {
	n := 0
	for i, d := range drafts {
		if _, err := ed.HandleCreate(ctx, d); err != nil && !errors.Is(err, board.ErrPersist) {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", ed.Store().Kind(), i, err))
			continue
		}
		n++
	}
	return n, errs
}
