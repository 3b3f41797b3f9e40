// Package domain contains core business types and interfaces.
//
// This file defines the tier policy: the monthly reply quota for each
// subscription tier and the pure admission decision over it.
package domain

import "fmt"

// UnlimitedQuota is the sentinel for tiers with no monthly cap.
// It is a distinguished value, never an operand: remaining-quota
// arithmetic must branch on it rather than subtract from it.
const UnlimitedQuota = -1

// TierLimits maps subscription tiers to replies per calendar month.
// Free tier is capped; paid tiers are unlimited.
var TierLimits = map[SubscriptionTier]int{
	SubscriptionTierFree:       25,
	SubscriptionTierCreatorPro: UnlimitedQuota,
	SubscriptionTierAgency:     UnlimitedQuota,
}

// TierLimit returns the monthly limit for a tier, defaulting to the free
// tier limit for unknown tiers.
func TierLimit(tier SubscriptionTier) int {
	if limit, ok := TierLimits[tier]; ok {
		return limit
	}
	return TierLimits[SubscriptionTierFree]
}

// QuotaDecision is the outcome of an admission check. Denial is a normal
// decision, not an error; callers surface it with the limit and tier so an
// upgrade prompt can be rendered.
type QuotaDecision struct {
	Allowed   bool
	Remaining int // UnlimitedQuota for unlimited tiers
	Limit     int // UnlimitedQuota for unlimited tiers
}

// QuotaExceededError reports a denied admission check. It carries the
// tier and limit so the caller can render an upgrade prompt.
type QuotaExceededError struct {
	Tier  SubscriptionTier
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly limit of %d replies reached for %s tier", e.Limit, e.Tier)
}

// DecideQuota applies the tier policy to the current monthly usage.
// The check is all-or-nothing: a request is admitted iff used < limit,
// regardless of how many replies it will produce.
func DecideQuota(tier SubscriptionTier, used int) QuotaDecision {
	limit := TierLimit(tier)
	if limit == UnlimitedQuota {
		return QuotaDecision{Allowed: true, Remaining: UnlimitedQuota, Limit: UnlimitedQuota}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return QuotaDecision{
		Allowed:   used < limit,
		Remaining: remaining,
		Limit:     limit,
	}
}
