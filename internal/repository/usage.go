package repository

import (
	"context"

	"github.com/google/uuid"
)

// GetMonthlyUsageParams identifies one ledger row.
type GetMonthlyUsageParams struct {
	UserID uuid.UUID
	Month  string
}

// GetMonthlyUsage fetches the ledger row for a (user, month) pair.
// Returns sql.ErrNoRows when the user has not generated this month;
// callers treat that as a zero-valued record, not a failure.
func (q *Queries) GetMonthlyUsage(ctx context.Context, arg GetMonthlyUsageParams) (MonthlyUsage, error) {
	var u MonthlyUsage
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, month, reply_count, platforms_used, created_at, updated_at
		FROM usage
		WHERE user_id = $1 AND month = $2`,
		arg.UserID, arg.Month,
	).Scan(&u.ID, &u.UserID, &u.Month, &u.ReplyCount, &u.PlatformsUsed, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// IncrementUsageParams describes one ledger increment.
type IncrementUsageParams struct {
	UserID   uuid.UUID
	Month    string
	Platform string
	Count    int32
}

// IncrementUsage adds Count to the month's total and to the platform's
// bucket in a single conflict-resolved upsert. Concurrent increments from
// the same user serialize on the (user_id, month) unique index inside the
// statement, so no update is ever lost.
func (q *Queries) IncrementUsage(ctx context.Context, arg IncrementUsageParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO usage (user_id, month, reply_count, platforms_used)
		VALUES ($1, $2, $3, jsonb_build_object($4::text, $3::int))
		ON CONFLICT (user_id, month) DO UPDATE SET
			reply_count = usage.reply_count + EXCLUDED.reply_count,
			platforms_used = jsonb_set(
				usage.platforms_used,
				ARRAY[$4::text],
				to_jsonb(COALESCE((usage.platforms_used ->> $4::text)::int, 0) + $3::int),
				true
			),
			updated_at = now()`,
		arg.UserID, arg.Month, arg.Count, arg.Platform,
	)
	return err
}
