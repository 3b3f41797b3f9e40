package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// User mirrors one row of the users table.
type User struct {
	ID                  uuid.UUID
	AuthSubject         string
	Email               string
	Name                string
	SubscriptionTier    string
	SubscriptionStatus  string
	StripeCustomerID    sql.NullString
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MonthlyUsage mirrors one row of the usage table: the reply counter for
// one (user, month) pair with a per-platform JSONB breakdown.
type MonthlyUsage struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Month         string
	ReplyCount    int32
	PlatformsUsed pqtype.NullRawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Generation mirrors one row of the generations table.
type Generation struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Platform        string
	CommentText     string
	OriginalPost    sql.NullString
	TonesRequested  pqtype.NullRawMessage
	Replies         pqtype.NullRawMessage
	SelectedReplyID sql.NullString
	CreatedAt       time.Time
}

// Analytics mirrors one row of the analytics table (one per user).
type Analytics struct {
	UserID                uuid.UUID
	TotalRepliesGenerated int32
	TotalTimeSavedMin     int32
	PlatformBreakdown     pqtype.NullRawMessage
	FavoriteTones         pqtype.NullRawMessage
	UpdatedAt             time.Time
}
