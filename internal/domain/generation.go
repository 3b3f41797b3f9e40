// Package domain contains core business types and interfaces.
//
// This file defines generation history, reply candidates, the monthly
// usage ledger record, and the per-user analytics aggregate.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinutesSavedPerReply is the estimate used for the time-saved aggregate.
const MinutesSavedPerReply = 2.5

// Reply is one generated reply candidate. Length and WithinLimit are
// derived from the text at parse time and immutable afterwards.
type Reply struct {
	ID          string `json:"id"`
	Tone        string `json:"tone"`
	Text        string `json:"text"`
	Length      int    `json:"length"`
	WithinLimit bool   `json:"withinLimit"`
}

// Generation is one append-only history entry: a single call that produced
// a batch of reply candidates. SelectedReplyID is the only mutable field,
// set later when the user picks a candidate.
type Generation struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Platform        string
	CommentText     string
	OriginalPost    string
	TonesRequested  []string
	Replies         []Reply
	SelectedReplyID string
	CreatedAt       time.Time
}

// MonthlyUsage is the per-user, per-calendar-month ledger record. A month
// with no persisted record reads as a zero-valued MonthlyUsage; the counter
// only ever increases within a month.
type MonthlyUsage struct {
	UserID        uuid.UUID
	Month         string // YYYY-MM, UTC
	ReplyCount    int
	PlatformsUsed map[string]int
}

// Analytics is the cumulative per-user aggregate, upserted after each
// successful generation. Monotonically non-decreasing.
type Analytics struct {
	UserID                uuid.UUID
	TotalRepliesGenerated int
	TotalTimeSavedMin     int
	PlatformBreakdown     map[string]int
	FavoriteTones         map[string]int
}

// MonthKey returns the ledger month key for t in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentMonthKey returns the ledger key for the current month.
func CurrentMonthKey() string {
	return MonthKey(time.Now())
}
