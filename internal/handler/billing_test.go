package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replytomic/replytomic/internal/billing"
	"github.com/replytomic/replytomic/internal/domain"
)

const testBaseURL = "https://app.replytomic.test"

func TestCreateCheckout_RequiresAuthentication(t *testing.T) {
	h := NewBillingHandler(&mockBillingService{}, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"creator_pro"}`, nil)
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateCheckout_BillingNotConfigured(t *testing.T) {
	h := NewBillingHandler(nil, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"creator_pro"}`, freeUser())
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, domain.ECONFIG, body["error"].(map[string]any)["code"])
}

func TestCreateCheckout_RejectsInvalidTier(t *testing.T) {
	bill := &mockBillingService{}
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	for _, tier := range []string{"free", "platinum", ""} {
		t.Run("tier="+tier, func(t *testing.T) {
			r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"`+tier+`"}`, freeUser())
			rec := httptest.NewRecorder()
			h.CreateCheckout(rec, r)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateCheckout_PriceNotConfigured(t *testing.T) {
	bill := &mockBillingService{
		PriceForTierFunc: func(tier domain.SubscriptionTier) string { return "" },
	}
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"agency"}`, freeUser())
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, domain.ECONFIG, body["error"].(map[string]any)["code"])
}

func TestCreateCheckout_ReusesExistingCustomer(t *testing.T) {
	customerCreated := false
	var gotParams billing.CheckoutParams
	bill := &mockBillingService{
		PriceForTierFunc: func(tier domain.SubscriptionTier) string { return "price_pro" },
		CreateCustomerFunc: func(email, name, userID string) (string, error) {
			customerCreated = true
			return "cus_new", nil
		},
		CreateCheckoutSessionFunc: func(params billing.CheckoutParams) (string, error) {
			gotParams = params
			return "https://checkout.stripe.com/c/pay/cs_test", nil
		},
	}
	user := freeUser()
	user.StripeCustomerID = "cus_existing"
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"creator_pro"}`, user)
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, customerCreated)
	assert.Equal(t, "cus_existing", gotParams.CustomerID)
	assert.Equal(t, "price_pro", gotParams.PriceID)
	assert.Equal(t, domain.SubscriptionTierCreatorPro, gotParams.Tier)
	assert.Equal(t, user.ID.String(), gotParams.UserID)
	assert.Equal(t, testBaseURL+"/dashboard?upgraded=true", gotParams.SuccessURL)
	assert.Equal(t, testBaseURL+"/dashboard?canceled=true", gotParams.CancelURL)
	assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_test"}`, rec.Body.String())
}

func TestCreateCheckout_CreatesCustomerWhenMissing(t *testing.T) {
	var gotParams billing.CheckoutParams
	bill := &mockBillingService{
		PriceForTierFunc: func(tier domain.SubscriptionTier) string { return "price_agency" },
		CreateCustomerFunc: func(email, name, userID string) (string, error) {
			return "cus_new", nil
		},
		CreateCheckoutSessionFunc: func(params billing.CheckoutParams) (string, error) {
			gotParams = params
			return "https://checkout.stripe.com/c/pay/cs_test", nil
		},
	}
	users := &mockUserService{}
	h := NewBillingHandler(bill, users, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"agency"}`, freeUser())
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cus_new", gotParams.CustomerID)
	assert.Equal(t, 1, users.UpdateStripeCustomerCalls)
}

func TestCreateCheckout_ExplicitPriceOverridesTierDefault(t *testing.T) {
	var gotParams billing.CheckoutParams
	bill := &mockBillingService{
		PriceForTierFunc: func(tier domain.SubscriptionTier) string { return "price_default" },
		CreateCheckoutSessionFunc: func(params billing.CheckoutParams) (string, error) {
			gotParams = params
			return "https://checkout.stripe.com/c/pay/cs_test", nil
		},
	}
	user := freeUser()
	user.StripeCustomerID = "cus_existing"
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout",
		`{"tier":"creator_pro","priceId":"price_custom"}`, user)
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "price_custom", gotParams.PriceID)
}

func TestCreateCheckout_StripeFailure(t *testing.T) {
	bill := &mockBillingService{
		PriceForTierFunc: func(tier domain.SubscriptionTier) string { return "price_pro" },
		CreateCheckoutSessionFunc: func(params billing.CheckoutParams) (string, error) {
			return "", errors.New("stripe: api unavailable")
		},
	}
	user := freeUser()
	user.StripeCustomerID = "cus_existing"
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/checkout", `{"tier":"creator_pro"}`, user)
	rec := httptest.NewRecorder()
	h.CreateCheckout(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, domain.EUPSTREAM, body["error"].(map[string]any)["code"])
}

func TestOpenPortal_RequiresBillingAccount(t *testing.T) {
	h := NewBillingHandler(&mockBillingService{}, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/portal", "", freeUser())
	rec := httptest.NewRecorder()
	h.OpenPortal(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No billing account found", body["error"].(map[string]any)["message"])
}

func TestOpenPortal_Success(t *testing.T) {
	bill := &mockBillingService{
		CreatePortalSessionFunc: func(customerID, returnURL string) (string, error) {
			assert.Equal(t, "cus_existing", customerID)
			assert.Equal(t, testBaseURL+"/dashboard", returnURL)
			return "https://billing.stripe.com/p/session/bps_test", nil
		},
	}
	user := freeUser()
	user.StripeCustomerID = "cus_existing"
	h := NewBillingHandler(bill, &mockUserService{}, testBaseURL, testLogger())

	r := authedRequest(http.MethodPost, "/api/billing/portal", "", user)
	rec := httptest.NewRecorder()
	h.OpenPortal(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://billing.stripe.com/p/session/bps_test"}`, rec.Body.String())
}
