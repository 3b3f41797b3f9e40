package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// GetAnalytics fetches a user's cumulative aggregate. Returns sql.ErrNoRows
// for users who have never generated; callers treat that as all zeros.
func (q *Queries) GetAnalytics(ctx context.Context, userID uuid.UUID) (Analytics, error) {
	var a Analytics
	err := q.db.QueryRowContext(ctx, `
		SELECT user_id, total_replies_generated, total_time_saved_minutes,
			platform_breakdown, favorite_tones, updated_at
		FROM analytics
		WHERE user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.TotalRepliesGenerated, &a.TotalTimeSavedMin,
		&a.PlatformBreakdown, &a.FavoriteTones, &a.UpdatedAt)
	return a, err
}

// SeedAnalytics creates the zero-valued aggregate row for a new user.
// Idempotent; existing rows are left alone.
func (q *Queries) SeedAnalytics(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO analytics (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	return err
}

// BumpAnalyticsParams carries the deltas from one successful generation.
type BumpAnalyticsParams struct {
	UserID          uuid.UUID
	Replies         int32
	TimeSavedMin    int32
	PlatformCounts  pqtype.NullRawMessage // platform -> replies added
	ToneCounts      pqtype.NullRawMessage // tone -> uses added
}

// BumpAnalytics adds one generation's deltas to the aggregate in a single
// conflict-resolved upsert. The JSONB maps are merged key-by-key in SQL so
// concurrent generations never clobber each other's counts.
func (q *Queries) BumpAnalytics(ctx context.Context, arg BumpAnalyticsParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO analytics (user_id, total_replies_generated, total_time_saved_minutes,
			platform_breakdown, favorite_tones)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb), COALESCE($5, '{}'::jsonb))
		ON CONFLICT (user_id) DO UPDATE SET
			total_replies_generated = analytics.total_replies_generated + EXCLUDED.total_replies_generated,
			total_time_saved_minutes = analytics.total_time_saved_minutes + EXCLUDED.total_time_saved_minutes,
			platform_breakdown = (
				SELECT COALESCE(jsonb_object_agg(key, val), '{}'::jsonb)
				FROM (
					SELECT key, SUM(value::int) AS val
					FROM (
						SELECT * FROM jsonb_each_text(analytics.platform_breakdown)
						UNION ALL
						SELECT * FROM jsonb_each_text(EXCLUDED.platform_breakdown)
					) merged
					GROUP BY key
				) summed
			),
			favorite_tones = (
				SELECT COALESCE(jsonb_object_agg(key, val), '{}'::jsonb)
				FROM (
					SELECT key, SUM(value::int) AS val
					FROM (
						SELECT * FROM jsonb_each_text(analytics.favorite_tones)
						UNION ALL
						SELECT * FROM jsonb_each_text(EXCLUDED.favorite_tones)
					) merged
					GROUP BY key
				) summed
			),
			updated_at = now()`,
		arg.UserID, arg.Replies, arg.TimeSavedMin, arg.PlatformCounts, arg.ToneCounts,
	)
	return err
}
