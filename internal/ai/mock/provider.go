package mock

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/replytomic/replytomic/internal/ai"
	"github.com/replytomic/replytomic/internal/domain"
)

// Provider is a mock reply generator for testing and development.
type Provider struct {
	logger *slog.Logger

	// Configurable responses for testing
	GenerateRepliesResponse []domain.Reply
	GenerateRepliesError    error

	// Call tracking for testing
	GenerateRepliesCalls int
}

// New creates a new mock provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// GenerateReplies returns configured or canned reply candidates.
func (p *Provider) GenerateReplies(ctx context.Context, params ai.GenerateParams) ([]domain.Reply, error) {
	p.GenerateRepliesCalls++

	if p.GenerateRepliesError != nil {
		return nil, p.GenerateRepliesError
	}
	if p.GenerateRepliesResponse != nil {
		return p.GenerateRepliesResponse, nil
	}

	p.logger.Debug("mock generation", "platform", params.Platform.Key, "tones", params.Tones)

	millis := time.Now().UnixMilli()
	texts := []string{
		"Thanks for raising this, the part about timing really resonates. What worked for you?",
		"Honestly same here. Took me a while to figure that out too.",
		"Well, at least now we know what not to do next time.",
		"Appreciate the perspective. We saw similar results when we tried it last quarter.",
		"Curious what others think, has anyone tried the opposite approach?",
	}

	replies := make([]domain.Reply, 0, len(texts))
	for i, text := range texts {
		length := utf8.RuneCountInString(text)
		replies = append(replies, domain.Reply{
			ID:          fmt.Sprintf("reply-%d-%d", millis, i),
			Tone:        params.Tones[i%len(params.Tones)],
			Text:        text,
			Length:      length,
			WithinLimit: length <= params.Platform.MaxLength,
		})
	}
	return replies, nil
}
