package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const userColumns = `id, auth_subject, email, name, subscription_tier,
	subscription_status, stripe_customer_id, onboarding_completed,
	created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.AuthSubject,
		&u.Email,
		&u.Name,
		&u.SubscriptionTier,
		&u.SubscriptionStatus,
		&u.StripeCustomerID,
		&u.OnboardingCompleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// UpsertUserParams contains the fields for the idempotent first-request
// user creation keyed by the identity provider subject.
type UpsertUserParams struct {
	AuthSubject string
	Email       string
	Name        string
}

// UpsertUser inserts a user for the given auth subject or, if one already
// exists, refreshes email and name from the token. Tier and status keep
// their stored values on conflict; only the webhook path changes them.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (auth_subject, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (auth_subject) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = now()
		RETURNING `+userColumns,
		arg.AuthSubject, arg.Email, arg.Name,
	)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByStripeCustomerID fetches a user by their billing customer reference.
func (q *Queries) GetUserByStripeCustomerID(ctx context.Context, customerID string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE stripe_customer_id = $1`, customerID)
	return scanUser(row)
}

// UpdateSubscriptionParams contains the subscription state mirrored from
// the billing provider.
type UpdateSubscriptionParams struct {
	ID                 uuid.UUID
	SubscriptionTier   string
	SubscriptionStatus string
	StripeCustomerID   sql.NullString // Null leaves the stored reference untouched
}

// UpdateSubscription overwrites a user's tier and status. The webhook
// synchronizer is the only caller; replays converge because the statement
// is a pure overwrite.
func (q *Queries) UpdateSubscription(ctx context.Context, arg UpdateSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET
			subscription_tier = $2,
			subscription_status = $3,
			stripe_customer_id = COALESCE($4, stripe_customer_id),
			updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.SubscriptionTier, arg.SubscriptionStatus, arg.StripeCustomerID,
	)
	return err
}

// UpdateStripeCustomer stores the billing customer reference for a user.
func (q *Queries) UpdateStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET stripe_customer_id = $2, updated_at = now()
		WHERE id = $1`,
		id, customerID,
	)
	return err
}

// SetOnboardingCompleted marks a user's onboarding as finished.
func (q *Queries) SetOnboardingCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET onboarding_completed = true, updated_at = now()
		WHERE id = $1`,
		id,
	)
	return err
}
