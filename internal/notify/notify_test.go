package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_RecentNewestFirst(t *testing.T) {
	f := NewFeed(3)
	clock := time.UnixMilli(1000)
	f.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	for _, title := range []string{"one", "two", "three", "four"} {
		f.Notify(context.Background(), Notice{Title: title})
	}

	got := f.Recent(0, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "four", got[0].Title)
	assert.Equal(t, "two", got[2].Title)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.NotEmpty(t, got[0].ID)

	assert.Len(t, f.Recent(2, 0), 2)
	since := f.Recent(0, got[1].CreatedAt)
	require.Len(t, since, 1)
	assert.Equal(t, "four", since[0].Title)
}

func TestMulti_StampsOnce(t *testing.T) {
	a, b := NewFeed(5), NewFeed(5)
	Multi{a, nil, b}.Notify(context.Background(), Warn("memories", "Saved locally only", errors.New("upstream 503")))

	na, nb := a.Recent(1, 0)[0], b.Recent(1, 0)[0]
	assert.Equal(t, na.ID, nb.ID)
	assert.Equal(t, LevelWarning, na.Level)
	assert.Equal(t, "upstream 503", na.Message)
	assert.Equal(t, "memories", na.Source)
}

type capturedPosts struct {
	mu   sync.Mutex
	msgs []*slack.WebhookMessage
	urls []string
}

func (c *capturedPosts) post(_ context.Context, url string, msg *slack.WebhookMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestSlackNotifier_ForwardsWarningsOnly(t *testing.T) {
	var captured capturedPosts
	s := NewSlackNotifier("https://hooks.slack.test/T000/B000", zerolog.Nop(), WithPostFunc(captured.post))

	s.Notify(context.Background(), Infof("tasks", "Created %q", "Ship report"))
	s.Notify(context.Background(), Warn("persist", "Could not save tasks", errors.New("disk full")))
	s.Wait()

	require.Len(t, captured.msgs, 1)
	assert.Equal(t, "https://hooks.slack.test/T000/B000", captured.urls[0])
	msg := captured.msgs[0]
	assert.Equal(t, "Mission Control: Could not save tasks", msg.Text)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "warning", msg.Attachments[0].Color)
	assert.Equal(t, "disk full", msg.Attachments[0].Text)
}

func TestSlackNotifier_MinLevelAndDisabled(t *testing.T) {
	var captured capturedPosts
	s := NewSlackNotifier("https://hooks.slack.test/x", zerolog.Nop(), WithPostFunc(captured.post), WithMinLevel(LevelError))
	s.Notify(context.Background(), Notice{Level: LevelWarning, Title: "skipped"})
	s.Notify(context.Background(), Notice{Level: LevelError, Title: "sent"})
	s.Wait()
	require.Len(t, captured.msgs, 1)

	off := NewSlackNotifier("", zerolog.Nop(), WithPostFunc(captured.post))
	off.Notify(context.Background(), Notice{Level: LevelError, Title: "nowhere"})
	off.Wait()
	assert.Len(t, captured.msgs, 1)
}

func TestSlackNotifier_PostFailureIsLogged(t *testing.T) {
	s := NewSlackNotifier("https://hooks.slack.test/x", zerolog.Nop(), WithPostFunc(func(context.Context, string, *slack.WebhookMessage) error {
		return errors.New("410 gone")
	}))
	assert.NotPanics(t, func() {
		s.Notify(context.Background(), Notice{Level: LevelError, Title: "boom"})
		s.Wait()
	})
}
