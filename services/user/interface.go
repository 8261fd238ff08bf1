package user

import (
	"context"
	"time"

	"jamb/database/repository"
	"jamb/models"
)

type UserService interface {
	// Registration and sessions
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, userID, token string) error
	// Authenticate resolves a bearer token to the user it was issued to.
	Authenticate(ctx context.Context, token string) (string, error)

	// Profile management
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req models.PasswordChange) error
	DeleteAccount(ctx context.Context, userID string) error
}

// TokenStore remembers the hashes of issued tokens so they can be revoked.
type TokenStore interface {
	Save(ctx context.Context, userID, hash string, ttl time.Duration) error
	Exists(ctx context.Context, userID, hash string) (bool, error)
	Revoke(ctx context.Context, userID, hash string) error
	RevokeAll(ctx context.Context, userID string) error
}

// IntentCanceller cancels the payment intent of an order.
type IntentCanceller interface {
	CancelIntent(ctx context.Context, intentID string) error
}

// DefaultUserService is the production implementation. Payments is optional.
type DefaultUserService struct {
	Repo     repository.UserRepository
	Orders   repository.OrderRepository
	Tokens   TokenStore
	Payments IntentCanceller

	NewID func() string
	Now   func() time.Time
}
