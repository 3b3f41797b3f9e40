// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories, external APIs,
// and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/repository"
)

// UserService defines the interface for user-related operations.
//
// Users are created lazily: the first authenticated request for an unknown
// identity-provider subject materializes a free-tier row. There is no
// separate registration flow.
type UserService interface {
	// GetOrCreate resolves the user for a verified token subject, creating
	// a free-tier row on first sight and refreshing email/name after that.
	GetOrCreate(ctx context.Context, subject, email, name string) (*domain.User, error)

	// GetByID retrieves a user by their ID.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByStripeCustomerID retrieves a user by their billing customer
	// reference. Returns domain.ENOTFOUND if no user carries it.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error)

	// UpdateSubscription overwrites the user's tier and status with state
	// mirrored from the billing provider. Idempotent.
	UpdateSubscription(ctx context.Context, userID uuid.UUID, update domain.SubscriptionUpdate) error

	// UpdateStripeCustomer stores the billing customer reference for a user.
	UpdateStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error

	// CompleteOnboarding marks the user's onboarding as finished.
	CompleteOnboarding(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(queries *repository.Queries, logger *slog.Logger) UserService {
	return &userService{
		queries: queries,
		logger:  logger,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, subject, email, name string) (*domain.User, error) {
	const op = "UserService.GetOrCreate"

	if subject == "" {
		return nil, domain.Errorf(domain.EINVALID, op, "Token subject is required")
	}

	repoUser, err := s.queries.UpsertUser(ctx, repository.UpsertUserParams{
		AuthSubject: subject,
		Email:       email,
		Name:        name,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to resolve user")
	}

	// Seed the zero-valued analytics row so stats reads never special-case
	// brand-new users. Best effort.
	if err := s.queries.SeedAnalytics(ctx, repoUser.ID); err != nil {
		s.logger.Error("failed to seed analytics row", "user_id", repoUser.ID, "error", err)
	}

	return repoUserToDomain(repoUser), nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "UserService.GetByID"

	repoUser, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}
	return repoUserToDomain(repoUser), nil
}

func (s *userService) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	const op = "UserService.GetByStripeCustomerID"

	repoUser, err := s.queries.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", customerID)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user by Stripe customer ID")
	}
	return repoUserToDomain(repoUser), nil
}

func (s *userService) UpdateSubscription(ctx context.Context, userID uuid.UUID, update domain.SubscriptionUpdate) error {
	const op = "UserService.UpdateSubscription"

	err := s.queries.UpdateSubscription(ctx, repository.UpdateSubscriptionParams{
		ID:                 userID,
		SubscriptionTier:   string(update.Tier),
		SubscriptionStatus: string(update.Status),
		StripeCustomerID:   domain.ToNullString(update.StripeCustomerID),
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to update subscription")
	}

	s.logger.Info("subscription updated",
		"user_id", userID,
		"tier", update.Tier,
		"status", update.Status,
	)
	return nil
}

func (s *userService) UpdateStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	const op = "UserService.UpdateStripeCustomer"

	if err := s.queries.UpdateStripeCustomer(ctx, userID, customerID); err != nil {
		return domain.Internal(err, op, "Failed to update Stripe customer ID")
	}

	s.logger.Info("stripe customer ID updated", "user_id", userID, "stripe_customer_id", customerID)
	return nil
}

func (s *userService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	const op = "UserService.CompleteOnboarding"

	if err := s.queries.SetOnboardingCompleted(ctx, userID); err != nil {
		return domain.Internal(err, op, "Failed to complete onboarding")
	}
	return nil
}

// repoUserToDomain converts a repository.User to domain.User.
func repoUserToDomain(u repository.User) *domain.User {
	return &domain.User{
		ID:                  u.ID,
		AuthSubject:         u.AuthSubject,
		Email:               u.Email,
		Name:                u.Name,
		SubscriptionTier:    domain.SubscriptionTier(u.SubscriptionTier),
		SubscriptionStatus:  domain.SubscriptionStatus(u.SubscriptionStatus),
		StripeCustomerID:    domain.NullStringValue(u.StripeCustomerID),
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
