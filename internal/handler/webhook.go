package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"

	"github.com/replytomic/replytomic/internal/billing"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/metrics"
	"github.com/replytomic/replytomic/internal/service"
)

// WebhookHandler mirrors billing-provider subscription state into user
// rows. Stripe is the source of truth for tier and status; every handled
// event overwrites rather than merges, so replays and out-of-order
// deliveries converge.
//
// Route:
//   - POST /webhooks/stripe
//
// This route is PUBLIC (no auth middleware) because Stripe calls it
// directly. Authentication is the webhook signature.
type WebhookHandler struct {
	billing     billing.Service
	userService service.UserService
	logger      *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
// billingService is nil when the webhook secret is not configured; the
// handler then refuses to process events rather than accept them unverified.
func NewWebhookHandler(billingService billing.Service, userService service.UserService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing:     billingService,
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers webhook routes on the provided mux.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook processes incoming Stripe webhook events.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.logger.Error("stripe webhook received but no webhook secret is configured")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Webhook not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No signature"})
		return
	}

	event, err := h.billing.VerifyWebhookSignature(body, signature)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
		return
	}

	h.logger.Info("stripe webhook received", "type", event.Type, "id", event.ID)

	status := "processed"
	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(r.Context(), event)
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionChange(r.Context(), event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(r.Context(), event)
	case "invoice.payment_failed":
		h.handlePaymentFailed(event)
	default:
		h.logger.Debug("unhandled webhook event type", "type", event.Type)
		status = "ignored"
	}
	metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), status).Inc()

	// Processing failures are logged, not returned: the state converges on
	// the next event because transitions are pure overwrites.
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// handleCheckoutCompleted resolves the session's subscription and applies
// the same transition as a subscription event would.
func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Error("failed to parse checkout session", "error", err)
		return
	}

	if session.Mode != stripe.CheckoutSessionModeSubscription || session.Subscription == nil {
		h.logger.Debug("checkout session without subscription, ignoring", "session_id", session.ID)
		return
	}

	sub, err := h.billing.GetSubscription(session.Subscription.ID)
	if err != nil {
		h.logger.Error("failed to resolve subscription from checkout session",
			"session_id", session.ID, "subscription_id", session.Subscription.ID, "error", err)
		return
	}

	h.applySubscription(ctx, sub)
}

func (h *WebhookHandler) handleSubscriptionChange(ctx context.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription event", "error", err)
		return
	}
	h.applySubscription(ctx, &sub)
}

// applySubscription maps the subscription's status onto a tier transition:
// active/trialing grants the metadata tier, canceled/unpaid demotes to free.
// Intermediate states like past_due leave the tier alone.
func (h *WebhookHandler) applySubscription(ctx context.Context, sub *stripe.Subscription) {
	user, err := h.resolveUser(ctx, sub)
	if err != nil {
		h.logger.Warn("no user for subscription event",
			"subscription_id", sub.ID, "error", err)
		return
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	var update domain.SubscriptionUpdate
	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		tier := domain.SubscriptionTier(sub.Metadata["tier"])
		if !domain.IsPaidTier(tier) {
			tier = domain.SubscriptionTierCreatorPro
		}
		update = domain.SubscriptionUpdate{
			Tier:             tier,
			Status:           domain.SubscriptionStatusActive,
			StripeCustomerID: customerID,
		}
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid:
		update = domain.SubscriptionUpdate{
			Tier:             domain.SubscriptionTierFree,
			Status:           domain.SubscriptionStatus(sub.Status),
			StripeCustomerID: customerID,
		}
	default:
		h.logger.Debug("subscription status leaves tier unchanged",
			"subscription_id", sub.ID, "status", sub.Status)
		return
	}

	if err := h.userService.UpdateSubscription(ctx, user.ID, update); err != nil {
		h.logger.Error("failed to apply subscription state",
			"user_id", user.ID, "subscription_id", sub.ID, "error", err)
		return
	}

	h.logger.Info("subscription state applied",
		"user_id", user.ID, "tier", update.Tier, "status", update.Status)
}

func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription deleted event", "error", err)
		return
	}

	user, err := h.resolveUser(ctx, &sub)
	if err != nil {
		h.logger.Warn("no user for subscription deletion", "subscription_id", sub.ID, "error", err)
		return
	}

	update := domain.SubscriptionUpdate{
		Tier:   domain.SubscriptionTierFree,
		Status: domain.SubscriptionStatusCanceled,
	}
	if err := h.userService.UpdateSubscription(ctx, user.ID, update); err != nil {
		h.logger.Error("failed to demote user on subscription deletion",
			"user_id", user.ID, "error", err)
		return
	}

	h.logger.Info("subscription deleted, user demoted to free", "user_id", user.ID)
}

// handlePaymentFailed only records the event; tier transitions wait for
// the subscription status to move to unpaid or canceled.
func (h *WebhookHandler) handlePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice payment failed event", "error", err)
		return
	}
	h.logger.Warn("invoice payment failed", "invoice_id", invoice.ID)
}

// resolveUser finds the application user for a subscription, preferring
// the user_id stamped into the metadata at checkout and falling back to
// the Stripe customer reference.
func (h *WebhookHandler) resolveUser(ctx context.Context, sub *stripe.Subscription) (*domain.User, error) {
	if raw, ok := sub.Metadata["user_id"]; ok && raw != "" {
		if userID, err := uuid.Parse(raw); err == nil {
			user, err := h.userService.GetByID(ctx, userID)
			if err == nil {
				return user, nil
			}
			h.logger.Warn("metadata user_id did not resolve", "user_id", raw, "error", err)
		}
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil, domain.Errorf(domain.ENOTFOUND, "WebhookHandler.resolveUser", "subscription carries no user reference")
	}
	return h.userService.GetByStripeCustomerID(ctx, sub.Customer.ID)
}
