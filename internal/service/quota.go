package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/replytomic/replytomic/internal/domain"
)

// QuotaService is the admission gate in front of generation.
type QuotaService interface {
	// CanGenerate decides whether a user may start a generation this month.
	// The check fails closed: if current usage cannot be read, the request
	// is rejected with an error rather than admitted on a guess.
	CanGenerate(ctx context.Context, userID uuid.UUID, tier domain.SubscriptionTier) (domain.QuotaDecision, error)
}

type quotaService struct {
	usage  UsageService
	logger *slog.Logger
}

// NewQuotaService creates a new QuotaService instance.
func NewQuotaService(usage UsageService, logger *slog.Logger) QuotaService {
	return &quotaService{
		usage:  usage,
		logger: logger,
	}
}

func (s *quotaService) CanGenerate(ctx context.Context, userID uuid.UUID, tier domain.SubscriptionTier) (domain.QuotaDecision, error) {
	const op = "QuotaService.CanGenerate"

	usage, err := s.usage.GetMonthlyUsage(ctx, userID)
	if err != nil {
		return domain.QuotaDecision{}, domain.Wrap(err, domain.EINTERNAL, op, "Failed to check usage")
	}

	decision := domain.DecideQuota(tier, usage.ReplyCount)
	if !decision.Allowed {
		s.logger.Info("generation denied by quota",
			"user_id", userID,
			"tier", tier,
			"used", usage.ReplyCount,
			"limit", decision.Limit,
		)
	}
	return decision, nil
}
