// Package ai defines the text-generation provider boundary.
//
// A provider turns one validated generation request into an ordered batch
// of reply candidates. Exactly one provider call is made per user-visible
// generation action; failures are surfaced to the caller, never retried
// here.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/platform"
)

// ReplyGenerator defines the interface for AI-powered reply generation.
type ReplyGenerator interface {
	// GenerateReplies produces reply candidates for one comment.
	GenerateReplies(ctx context.Context, params GenerateParams) ([]domain.Reply, error)
}

// GenerateParams contains the validated inputs for one generation call.
type GenerateParams struct {
	Comment      string          // The comment being replied to
	OriginalPost string          // Optional context post
	Tones        []string        // Requested tones, never empty
	Platform     platform.Config // Rules for the target platform
}

// Error codes for provider operations
var (
	// ErrUnauthorized indicates invalid API credentials
	ErrUnauthorized = errors.New("ai provider authentication failed")

	// ErrRateLimit indicates the provider's rate limit has been exceeded
	ErrRateLimit = errors.New("ai provider rate limit exceeded")

	// ErrUnavailable indicates the provider is temporarily unavailable
	ErrUnavailable = errors.New("ai service temporarily unavailable")

	// ErrMalformedOutput indicates the provider answered but the payload
	// did not parse into the expected reply sequence
	ErrMalformedOutput = errors.New("ai response did not match expected format")
)

// WrapError wraps an error with context about the AI operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
