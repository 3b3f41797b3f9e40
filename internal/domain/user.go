// Package domain contains core business types and interfaces.
//
// This file defines the User domain type. Users are keyed by the subject
// claim of the external identity provider's token and created lazily on
// the first authenticated request.
package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the possible states of a user's subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid   SubscriptionStatus = "unpaid"
)

// SubscriptionTier represents the pricing tier of a subscription.
type SubscriptionTier string

const (
	SubscriptionTierFree       SubscriptionTier = "free"
	SubscriptionTierCreatorPro SubscriptionTier = "creator_pro"
	SubscriptionTierAgency     SubscriptionTier = "agency"
)

// PaidTiers lists the tiers purchasable through checkout.
var PaidTiers = []SubscriptionTier{SubscriptionTierCreatorPro, SubscriptionTierAgency}

// IsPaidTier reports whether tier can be bought through checkout.
func IsPaidTier(tier SubscriptionTier) bool {
	for _, t := range PaidTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// User represents a registered user of the platform.
//
// This is the domain representation, designed for use in business logic.
// It differs from repository.User in that it uses plain Go types instead
// of sql.Null* types and can carry helper methods.
type User struct {
	ID                  uuid.UUID
	AuthSubject         string // Identity provider subject claim
	Email               string
	Name                string
	SubscriptionTier    SubscriptionTier
	SubscriptionStatus  SubscriptionStatus
	StripeCustomerID    string
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// SubscriptionUpdate carries the fields the webhook synchronizer overwrites.
// It only ever mirrors billing-provider state; nothing here is cumulative.
type SubscriptionUpdate struct {
	Tier             SubscriptionTier
	Status           SubscriptionStatus
	StripeCustomerID string // Empty means leave the stored reference untouched
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
