package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/replytomic/replytomic/internal/ai"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/platform"
)

// GenerationService orchestrates one user-visible generation action:
// admission check, a single provider call, then bookkeeping.
type GenerationService interface {
	// Generate produces reply candidates for one comment.
	//
	// Returns *domain.QuotaExceededError when the admission gate denies
	// the request. On provider or parse failure nothing is recorded and
	// the error propagates; a retried request is evaluated against the
	// gate afresh.
	Generate(ctx context.Context, user *domain.User, params GenerateParams) (*GenerateResult, error)
}

// GenerateParams is one generation request after transport decoding.
type GenerateParams struct {
	Platform     string
	Comment      string
	OriginalPost string
	Tones        []string
}

// GenerateResult is the outcome of a successful generation.
//
// GenerationID is empty when the history write failed; the replies are
// still returned because bookkeeping never fails a generation that
// already succeeded.
type GenerateResult struct {
	Replies      []domain.Reply
	GenerationID string
	Remaining    int // post-generation remaining quota, UnlimitedQuota for paid tiers
	Limit        int
	Tier         domain.SubscriptionTier
}

type generationService struct {
	provider ai.ReplyGenerator
	quota    QuotaService
	usage    UsageService
	history  HistoryService
	logger   *slog.Logger
}

// NewGenerationService creates a new GenerationService instance.
func NewGenerationService(
	provider ai.ReplyGenerator,
	quota QuotaService,
	usage UsageService,
	history HistoryService,
	logger *slog.Logger,
) GenerationService {
	return &generationService{
		provider: provider,
		quota:    quota,
		usage:    usage,
		history:  history,
		logger:   logger,
	}
}

func (s *generationService) Generate(ctx context.Context, user *domain.User, params GenerateParams) (*GenerateResult, error) {
	const op = "GenerationService.Generate"

	if params.Comment == "" {
		return nil, domain.Invalid(op, "Comment is required")
	}
	platformCfg, ok := platform.Lookup(params.Platform)
	if !ok {
		return nil, domain.Invalid(op, "Unknown platform: "+params.Platform)
	}
	tones := params.Tones
	if len(tones) == 0 {
		tones = []string{"helpful"}
	}

	// The gate read happens before the provider call, always against
	// current store state. Denial is a decision, not an error.
	decision, err := s.quota.CanGenerate(ctx, user.ID, user.SubscriptionTier)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &domain.QuotaExceededError{
			Tier:  user.SubscriptionTier,
			Limit: decision.Limit,
		}
	}

	// Exactly one provider call per generation action. No retries.
	replies, err := s.provider.GenerateReplies(ctx, ai.GenerateParams{
		Comment:      params.Comment,
		OriginalPost: params.OriginalPost,
		Tones:        tones,
		Platform:     platformCfg,
	})
	if err != nil {
		return nil, translateProviderError(op, err)
	}

	generationID := s.recordGeneration(ctx, user, platformCfg.Key, params, tones, replies)

	result := &GenerateResult{
		Replies:      replies,
		GenerationID: generationID,
		Remaining:    decision.Remaining,
		Limit:        decision.Limit,
		Tier:         user.SubscriptionTier,
	}
	if decision.Limit != domain.UnlimitedQuota {
		result.Remaining = decision.Remaining - len(replies)
		if result.Remaining < 0 {
			result.Remaining = 0
		}
	}
	return result, nil
}

// recordGeneration runs the three post-success bookkeeping writes: ledger
// increment, history append, analytics bump. They run concurrently and are
// joined before the response goes out. Each failure is logged and isolated;
// none rolls back the others and none fails the request.
func (s *generationService) recordGeneration(
	ctx context.Context,
	user *domain.User,
	platformKey string,
	params GenerateParams,
	tones []string,
	replies []domain.Reply,
) string {
	n := len(replies)
	var (
		wg           sync.WaitGroup
		generationID uuid.UUID
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		if err := s.usage.IncrementUsage(ctx, user.ID, platformKey, n); err != nil {
			s.logger.Error("usage increment failed", "user_id", user.ID, "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		id, err := s.history.Save(ctx, &domain.Generation{
			UserID:         user.ID,
			Platform:       platformKey,
			CommentText:    params.Comment,
			OriginalPost:   params.OriginalPost,
			TonesRequested: tones,
			Replies:        replies,
		})
		if err != nil {
			s.logger.Error("history write failed", "user_id", user.ID, "error", err)
			return
		}
		generationID = id
	}()

	go func() {
		defer wg.Done()
		toneCounts := make(map[string]int)
		for _, r := range replies {
			toneCounts[r.Tone]++
		}
		err := s.usage.BumpAnalytics(ctx, AnalyticsDelta{
			UserID:       user.ID,
			Replies:      n,
			TimeSavedMin: int(math.Round(float64(n) * domain.MinutesSavedPerReply)),
			Platforms:    map[string]int{platformKey: n},
			Tones:        toneCounts,
		})
		if err != nil {
			s.logger.Error("analytics update failed", "user_id", user.ID, "error", err)
		}
	}()

	wg.Wait()

	if generationID == uuid.Nil {
		return ""
	}
	return generationID.String()
}

// translateProviderError maps provider failures onto the application error
// taxonomy so the transport layer can pick a status without inspecting
// provider internals.
func translateProviderError(op string, err error) error {
	switch {
	case errors.Is(err, ai.ErrUnauthorized):
		return domain.Config(op, "AI provider is not configured correctly")
	case errors.Is(err, ai.ErrRateLimit):
		return domain.Upstream(err, op, "AI provider rate limit exceeded, try again shortly")
	case errors.Is(err, ai.ErrUnavailable):
		return domain.Upstream(err, op, "AI provider is temporarily unavailable")
	case errors.Is(err, ai.ErrMalformedOutput):
		return domain.Upstream(err, op, "AI provider returned an unusable response")
	default:
		return domain.Upstream(err, op, "Reply generation failed")
	}
}
