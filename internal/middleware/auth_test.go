package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/domain"
)

// =============================================================================
// Mocks
// =============================================================================

type mockVerifier struct {
	VerifyFunc func(tokenString string) (*auth.Claims, error)
}

func (m *mockVerifier) Verify(tokenString string) (*auth.Claims, error) {
	return m.VerifyFunc(tokenString)
}

type mockUserService struct {
	GetOrCreateFunc func(ctx context.Context, subject, email, name string) (*domain.User, error)
}

func (m *mockUserService) GetOrCreate(ctx context.Context, subject, email, name string) (*domain.User, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, subject, email, name)
	}
	return nil, errors.New("GetOrCreateFunc not implemented")
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserService) UpdateSubscription(ctx context.Context, userID uuid.UUID, update domain.SubscriptionUpdate) error {
	return errors.New("not implemented")
}

func (m *mockUserService) UpdateStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	return errors.New("not implemented")
}

func (m *mockUserService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	return errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Tests
// =============================================================================

func TestRequireUser(t *testing.T) {
	userID := uuid.New()
	verifier := &mockVerifier{
		VerifyFunc: func(tokenString string) (*auth.Claims, error) {
			if tokenString != "valid-token" {
				return nil, errors.New("invalid token")
			}
			return &auth.Claims{Subject: "auth0|abc123", Email: "creator@example.com", Name: "Creator"}, nil
		},
	}
	users := &mockUserService{
		GetOrCreateFunc: func(ctx context.Context, subject, email, name string) (*domain.User, error) {
			if subject != "auth0|abc123" {
				t.Errorf("GetOrCreate subject = %q, want %q", subject, "auth0|abc123")
			}
			return &domain.User{ID: userID, Email: email, Name: name, SubscriptionTier: domain.SubscriptionTierFree}, nil
		},
	}
	mw := NewAuthMiddleware(verifier, users, testLogger())

	testCases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "missing authorization header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer with no token",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer garbage",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer valid-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "lowercase scheme is accepted",
			authHeader: "bearer valid-token",
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *domain.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = auth.GetUser(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
			if tc.authHeader != "" {
				r.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			mw.RequireUser(next).ServeHTTP(rec, r)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK {
				if seen == nil {
					t.Fatal("expected user in request context")
				}
				if seen.ID != userID {
					t.Errorf("context user ID = %s, want %s", seen.ID, userID)
				}
			} else if seen != nil {
				t.Error("handler ran despite rejected request")
			}
		})
	}
}

func TestRequireUser_UserResolutionFailure(t *testing.T) {
	verifier := &mockVerifier{
		VerifyFunc: func(tokenString string) (*auth.Claims, error) {
			return &auth.Claims{Subject: "auth0|abc123"}, nil
		},
	}
	users := &mockUserService{
		GetOrCreateFunc: func(ctx context.Context, subject, email, name string) (*domain.User, error) {
			return nil, domain.Internal(errors.New("db down"), "UserService.GetOrCreate", "Failed to load user")
		},
	}
	mw := NewAuthMiddleware(verifier, users, testLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	r.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})).ServeHTTP(rec, r)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestStack_OrdersOutsideIn(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Stack(tag("outer"), tag("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("call order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("call order = %v, want %v", order, want)
		}
	}
}
