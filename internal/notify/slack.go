package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// PostFunc sends a webhook message. slack.PostWebhookContext in production.
type PostFunc func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// SlackNotifier mirrors notices at or above a level to a Slack incoming
// webhook. Delivery happens in the background with its own timeout.
type SlackNotifier struct {
	url      string
	minLevel Level
	timeout  time.Duration
	post     PostFunc
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// SlackOption configures a SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithMinLevel sets the lowest level forwarded. Default is warning.
func WithMinLevel(l Level) SlackOption {
	return func(s *SlackNotifier) { s.minLevel = l }
}

// WithPostFunc replaces the HTTP poster.
func WithPostFunc(fn PostFunc) SlackOption {
	return func(s *SlackNotifier) { s.post = fn }
}

// NewSlackNotifier posts to webhookURL.
func NewSlackNotifier(webhookURL string, logger zerolog.Logger, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		url:      webhookURL,
		minLevel: LevelWarning,
		timeout:  5 * time.Second,
		post:     slack.PostWebhookContext,
		logger:   logger.With().Str("component", "slack-notify").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SlackNotifier) Notify(_ context.Context, n Notice) {
	if s.url == "" || n.Level.rank() < s.minLevel.rank() {
		return
	}
	msg := webhookMessage(n)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.post(ctx, s.url, msg); err != nil {
			s.logger.Warn().Err(err).Str("notice", n.Title).Msg("slack webhook failed")
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (s *SlackNotifier) Wait() { s.wg.Wait() }

var levelColors = map[Level]string{
	LevelInfo:    "#439FE0",
	LevelSuccess: "good",
	LevelWarning: "warning",
	LevelError:   "danger",
}

func webhookMessage(n Notice) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: "Mission Control: " + n.Title,
		Attachments: []slack.Attachment{{
			Color:  levelColors[n.Level],
			Title:  n.Title,
			Text:   n.Message,
			Footer: n.Source,
		}},
	}
}
