// Package notify delivers transient, non-blocking user notifications: the
// recent feed the dashboard polls for toasts, the service log and, when
// configured, a Slack incoming webhook.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func (l Level) rank() int {
	switch l {
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	}
	return 1
}

// Notice is one notification.
type Notice struct {
	ID        string `json:"id"`
	Level     Level  `json:"level"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Notifier delivers notices. Implementations must not block the caller on
// remote I/O.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Warn builds a warning notice for err.
func Warn(source, title string, err error) Notice {
	n := Notice{Level: LevelWarning, Title: title, Source: source}
	if err != nil {
		n.Message = err.Error()
	}
	return n
}

// Infof builds an info notice.
func Infof(source, format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Title: fmt.Sprintf(format, args...), Source: source}
}

// Multi fans a notice out to every notifier, stamping it once.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	n = stamp(n, time.Now())
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

func stamp(n Notice, now time.Time) Notice {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = now.UnixMilli()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}
	return n
}

// LogNotifier writes notices to the service log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a notifier logging under component "notify".
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (l *LogNotifier) Notify(_ context.Context, n Notice) {
	ev := l.logger.Info()
	switch n.Level {
	case LevelWarning:
		ev = l.logger.Warn()
	case LevelError:
		ev = l.logger.Error()
	}
	ev.Str("source", n.Source).Str("notice", n.Title).Str("detail", n.Message).Msg("notification")
}

// Feed keeps the most recent notices in memory.
type Feed struct {
	mu    sync.RWMutex
	items []Notice
	limit int
	now   func() time.Time
}

// NewFeed keeps up to limit notices.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, n Notice) {
	n = stamp(n, f.now())
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = append([]Notice(nil), f.items[len(f.items)-f.limit:]...)
	}
}

// Recent returns up to limit notices, newest first. Notices created at or
// before since (epoch ms) are skipped when since > 0.
func (f *Feed) Recent(limit int, since int64) []Notice {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notice, 0, min(max(limit, 0), len(f.items)))
	for i := len(f.items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		n := f.items[i]
		if since > 0 && n.CreatedAt <= since {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Len returns the number of retained notices.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}
