package handler

import (
	"log/slog"
	"net/http"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/service"
)

// UsageHandler exposes the account usage dashboard data.
//
// Routes:
//   - GET  /api/usage               (authenticated)
//   - POST /api/onboarding/complete (authenticated)
type UsageHandler struct {
	usage  service.UsageService
	users  service.UserService
	logger *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usage service.UsageService, users service.UserService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		usage:  usage,
		users:  users,
		logger: logger,
	}
}

// RegisterRoutes registers usage routes on the provided mux.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/usage", requireUser(http.HandlerFunc(h.GetUsage)))
	mux.Handle("POST /api/onboarding/complete", requireUser(http.HandlerFunc(h.CompleteOnboarding)))
}

type usageResponse struct {
	User  usageUser  `json:"user"`
	Usage usageBlock `json:"usage"`
	Stats usageStats `json:"stats"`
}

type usageUser struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	Tier                string `json:"tier"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

type usageBlock struct {
	ThisMonth     int            `json:"thisMonth"`
	Remaining     int            `json:"remaining"`
	Limit         int            `json:"limit"`
	PlatformsUsed map[string]int `json:"platformsUsed"`
}

type usageStats struct {
	TotalGenerated    int            `json:"totalGenerated"`
	TimeSavedMinutes  int            `json:"timeSavedMinutes"`
	PlatformBreakdown map[string]int `json:"platformBreakdown"`
	FavoriteTones     map[string]int `json:"favoriteTones"`
}

// GetUsage handles GET /api/usage.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("UsageHandler.GetUsage", "Authentication required"))
		return
	}

	monthly, err := h.usage.GetMonthlyUsage(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	decision := domain.DecideQuota(user.SubscriptionTier, monthly.ReplyCount)

	// Analytics are a best-effort mirror; an unreadable aggregate should
	// not take down the usage dashboard.
	analytics, err := h.usage.GetAnalytics(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to read analytics", "user_id", user.ID, "error", err)
		analytics = &domain.Analytics{
			UserID:            user.ID,
			PlatformBreakdown: map[string]int{},
			FavoriteTones:     map[string]int{},
		}
	}

	writeJSON(w, http.StatusOK, usageResponse{
		User: usageUser{
			ID:                  user.ID.String(),
			Email:               user.Email,
			Name:                user.Name,
			Tier:                string(user.SubscriptionTier),
			OnboardingCompleted: user.OnboardingCompleted,
		},
		Usage: usageBlock{
			ThisMonth:     monthly.ReplyCount,
			Remaining:     decision.Remaining,
			Limit:         decision.Limit,
			PlatformsUsed: monthly.PlatformsUsed,
		},
		Stats: usageStats{
			TotalGenerated:    analytics.TotalRepliesGenerated,
			TimeSavedMinutes:  analytics.TotalTimeSavedMin,
			PlatformBreakdown: analytics.PlatformBreakdown,
			FavoriteTones:     analytics.FavoriteTones,
		},
	})
}

// CompleteOnboarding handles POST /api/onboarding/complete.
func (h *UsageHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("UsageHandler.CompleteOnboarding", "Authentication required"))
		return
	}

	if err := h.users.CompleteOnboarding(r.Context(), user.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
