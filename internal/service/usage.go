package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/repository"
)

// UsageService owns the monthly usage ledger and the cumulative analytics
// aggregate.
type UsageService interface {
	// GetMonthlyUsage returns the current month's ledger record for a user.
	// A month with no persisted row reads as a zero-valued record; store
	// errors propagate.
	GetMonthlyUsage(ctx context.Context, userID uuid.UUID) (*domain.MonthlyUsage, error)

	// IncrementUsage adds count replies to the current month's ledger for
	// the given platform. The write is a single conflict-resolved upsert,
	// safe under concurrent requests from the same user.
	IncrementUsage(ctx context.Context, userID uuid.UUID, platformKey string, count int) error

	// BumpAnalytics adds one generation's deltas to the user's cumulative
	// aggregate.
	BumpAnalytics(ctx context.Context, delta AnalyticsDelta) error

	// GetAnalytics returns the user's cumulative aggregate, zero-valued for
	// users who have never generated.
	GetAnalytics(ctx context.Context, userID uuid.UUID) (*domain.Analytics, error)
}

// AnalyticsDelta carries the increments from one successful generation.
type AnalyticsDelta struct {
	UserID       uuid.UUID
	Replies      int
	TimeSavedMin int
	Platforms    map[string]int // platform key -> replies added
	Tones        map[string]int // tone -> uses added
}

type usageService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUsageService creates a new UsageService instance.
func NewUsageService(queries *repository.Queries, logger *slog.Logger) UsageService {
	return &usageService{
		queries: queries,
		logger:  logger,
	}
}

func (s *usageService) GetMonthlyUsage(ctx context.Context, userID uuid.UUID) (*domain.MonthlyUsage, error) {
	const op = "UsageService.GetMonthlyUsage"

	month := domain.CurrentMonthKey()
	row, err := s.queries.GetMonthlyUsage(ctx, repository.GetMonthlyUsageParams{
		UserID: userID,
		Month:  month,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No row yet this month means zero usage, not a failure.
			return &domain.MonthlyUsage{
				UserID:        userID,
				Month:         month,
				ReplyCount:    0,
				PlatformsUsed: map[string]int{},
			}, nil
		}
		return nil, domain.Internal(err, op, "Failed to read usage")
	}

	return &domain.MonthlyUsage{
		UserID:        row.UserID,
		Month:         row.Month,
		ReplyCount:    int(row.ReplyCount),
		PlatformsUsed: unmarshalCounts(row.PlatformsUsed),
	}, nil
}

func (s *usageService) IncrementUsage(ctx context.Context, userID uuid.UUID, platformKey string, count int) error {
	const op = "UsageService.IncrementUsage"

	err := s.queries.IncrementUsage(ctx, repository.IncrementUsageParams{
		UserID:   userID,
		Month:    domain.CurrentMonthKey(),
		Platform: platformKey,
		Count:    int32(count),
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to record usage")
	}
	return nil
}

func (s *usageService) BumpAnalytics(ctx context.Context, delta AnalyticsDelta) error {
	const op = "UsageService.BumpAnalytics"

	err := s.queries.BumpAnalytics(ctx, repository.BumpAnalyticsParams{
		UserID:         delta.UserID,
		Replies:        int32(delta.Replies),
		TimeSavedMin:   int32(delta.TimeSavedMin),
		PlatformCounts: marshalCounts(delta.Platforms),
		ToneCounts:     marshalCounts(delta.Tones),
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to update analytics")
	}
	return nil
}

func (s *usageService) GetAnalytics(ctx context.Context, userID uuid.UUID) (*domain.Analytics, error) {
	const op = "UsageService.GetAnalytics"

	row, err := s.queries.GetAnalytics(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Analytics{
				UserID:            userID,
				PlatformBreakdown: map[string]int{},
				FavoriteTones:     map[string]int{},
			}, nil
		}
		return nil, domain.Internal(err, op, "Failed to read analytics")
	}

	return &domain.Analytics{
		UserID:                row.UserID,
		TotalRepliesGenerated: int(row.TotalRepliesGenerated),
		TotalTimeSavedMin:     int(row.TotalTimeSavedMin),
		PlatformBreakdown:     unmarshalCounts(row.PlatformBreakdown),
		FavoriteTones:         unmarshalCounts(row.FavoriteTones),
	}, nil
}

// marshalCounts encodes a counter map for a JSONB column. Nil or empty maps
// become SQL NULL; the queries coalesce that to an empty object.
func marshalCounts(m map[string]int) pqtype.NullRawMessage {
	if len(m) == 0 {
		return pqtype.NullRawMessage{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

// unmarshalCounts decodes a JSONB counter column, tolerating NULL and
// malformed stored values by returning an empty map.
func unmarshalCounts(raw pqtype.NullRawMessage) map[string]int {
	out := map[string]int{}
	if !raw.Valid {
		return out
	}
	if err := json.Unmarshal(raw.RawMessage, &out); err != nil {
		return map[string]int{}
	}
	return out
}
