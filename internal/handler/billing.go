package handler

import (
	"log/slog"
	"net/http"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/billing"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/service"
)

// BillingHandler handles subscription purchase and management redirects.
//
// Routes:
//   - POST /api/billing/checkout (authenticated)
//   - POST /api/billing/portal   (authenticated)
type BillingHandler struct {
	billing     billing.Service
	userService service.UserService
	baseURL     string
	logger      *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
// billingService may be nil when Stripe is not configured (development mode).
func NewBillingHandler(billingService billing.Service, userService service.UserService, baseURL string, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:     billingService,
		userService: userService,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// RegisterRoutes registers billing routes on the provided mux.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/billing/checkout", requireUser(http.HandlerFunc(h.CreateCheckout)))
	mux.Handle("POST /api/billing/portal", requireUser(http.HandlerFunc(h.OpenPortal)))
}

type checkoutRequest struct {
	Tier    string `json:"tier"`
	PriceID string `json:"priceId"`
}

// CreateCheckout handles POST /api/billing/checkout.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.CreateCheckout"

	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized(op, "Authentication required"))
		return
	}
	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Config(op, "Billing is not configured"))
		return
	}

	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	tier := domain.SubscriptionTier(req.Tier)
	if !domain.IsPaidTier(tier) {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Invalid tier"))
		return
	}

	priceID := req.PriceID
	if priceID == "" {
		priceID = h.billing.PriceForTier(tier)
	}
	if priceID == "" {
		ErrorResponse(w, r, h.logger, domain.Config(op, "Price not configured for tier "+req.Tier))
		return
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		created, err := h.billing.CreateCustomer(user.Email, user.DisplayName(), user.ID.String())
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Upstream(err, op, "Failed to create billing customer"))
			return
		}
		customerID = created
		if err := h.userService.UpdateStripeCustomer(r.Context(), user.ID, customerID); err != nil {
			// The webhook also persists the customer reference, so a
			// failed write here is recoverable.
			h.logger.Error("failed to persist stripe customer ID", "user_id", user.ID, "error", err)
		}
	}

	url, err := h.billing.CreateCheckoutSession(billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		Tier:       tier,
		UserID:     user.ID.String(),
		SuccessURL: h.baseURL + "/dashboard?upgraded=true",
		CancelURL:  h.baseURL + "/dashboard?canceled=true",
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Upstream(err, op, "Failed to create checkout session"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// OpenPortal handles POST /api/billing/portal.
func (h *BillingHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.OpenPortal"

	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized(op, "Authentication required"))
		return
	}
	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Config(op, "Billing is not configured"))
		return
	}
	if user.StripeCustomerID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No billing account found"))
		return
	}

	url, err := h.billing.CreatePortalSession(user.StripeCustomerID, h.baseURL+"/dashboard")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Upstream(err, op, "Failed to create portal session"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
