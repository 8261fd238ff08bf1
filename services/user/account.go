package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	userRepo "jamb/database/repository/user"
	"jamb/models"
	"jamb/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return utils.NewValidationError("password must be at least 8 characters long")
	}
	if !hasLetter.MatchString(pw) {
		return utils.NewValidationError("password must include at least one letter")
	}
	if !hasNumber.MatchString(pw) {
		return utils.NewValidationError("password must include at least one number")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultUserService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *DefaultUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, utils.NewValidationError("a valid email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	newUser := &models.User{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(newUser); err != nil {
		if errors.Is(err, userRepo.ErrDuplicateEmail) {
			return nil, utils.NewConflictError("an account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	utils.GetLogger().Info("User registered", zap.String("userID", newUser.ID))
	return s.issueToken(ctx, newUser)
}

func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	userRec, err := s.Repo.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, utils.NewAuthError("invalid email or password")
		}
		utils.GetLogger().Error("Login: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.NewAuthError("invalid email or password")
	}
	return s.issueToken(ctx, userRec)
}

// issueToken signs a token and records its hash; a token whose hash is absent is rejected.
func (s *DefaultUserService) issueToken(ctx context.Context, u *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(u.ID, u.Email, utils.AuthTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.Tokens.Save(ctx, u.ID, utils.HashToken(token), utils.AuthTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return &models.AuthResponse{
		ID:        u.ID,
		Token:     token,
		ExpiresAt: s.now().Add(utils.AuthTokenTTL),
		Name:      u.Name,
		Email:     u.Email,
	}, nil
}

func (s *DefaultUserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return "", utils.NewAuthError("invalid token")
	}

	found, err := s.Tokens.Exists(ctx, userID, utils.HashToken(token))
	if err != nil {
		return "", fmt.Errorf("failed to check token: %w", err)
	}
	if !found {
		return "", utils.NewAuthError("token has been revoked")
	}
	return userID, nil
}

func (s *DefaultUserService) Logout(ctx context.Context, userID, token string) error {
	return s.Tokens.Revoke(ctx, userID, utils.HashToken(token))
}

func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, utils.NewValidationError("name cannot be empty")
		}
		u.Name = name
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*update.PhoneNumber)
	}
	if update.Address != nil {
		addr := *update.Address
		addr.State = strings.ToUpper(strings.TrimSpace(addr.State))
		u.Address = &addr
	}
	if update.FCMToken != nil {
		u.FCMToken = strings.TrimSpace(*update.FCMToken)
	}
	u.UpdatedAt = s.now()

	if err := s.Repo.Update(u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *DefaultUserService) ChangePassword(ctx context.Context, userID string, req models.PasswordChange) error {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.NewAuthError("current password is incorrect")
	}
	if req.CurrentPassword == req.NewPassword {
		return utils.NewValidationError("new password must differ from the current one")
	}
	if err := VerifyPasswordComplexity(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	if err := s.Repo.Update(u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Every session signed with the old password ends here.
	if err := s.Tokens.RevokeAll(ctx, userID); err != nil {
		utils.GetLogger().Error("ChangePassword: failed to revoke tokens", zap.String("userID", userID), zap.Error(err))
	}
	return nil
}

func (s *DefaultUserService) DeleteAccount(ctx context.Context, userID string) error {
	logger := utils.GetLogger()
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.Repo.Delete(userID); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return utils.NewNotFoundError("user not found")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.Tokens.RevokeAll(ctx, userID); err != nil {
		logger.Error("DeleteAccount: failed to revoke tokens", zap.String("userID", userID), zap.Error(err))
	}
	if s.Orders == nil {
		return nil
	}

	s.cancelOpenIntents(ctx, userID)
	removed, err := s.Orders.DeleteByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	logger.Info("Deleted user orders", zap.String("userID", userID), zap.Int64("count", removed))
	return nil
}

// cancelOpenIntents releases the payment intents of orders that have not started yet.
func (s *DefaultUserService) cancelOpenIntents(ctx context.Context, userID string) {
	if s.Payments == nil {
		return
	}
	logger := utils.GetLogger()
	orders, err := s.Orders.ListByUser(userID)
	if err != nil {
		logger.Error("DeleteAccount: failed to list orders", zap.String("userID", userID), zap.Error(err))
		return
	}
	for _, o := range orders {
		if o.PaymentIntentID == "" {
			continue
		}
		if o.Status != models.OrderPending && o.Status != models.OrderConfirmed {
			continue
		}
		if err := s.Payments.CancelIntent(ctx, o.PaymentIntentID); err != nil {
			logger.Error("DeleteAccount: failed to cancel payment intent",
				zap.String("orderID", o.ID), zap.String("intentID", o.PaymentIntentID), zap.Error(err))
		}
	}
}
