package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gaznger/auth"
	"gaznger/events"
	"gaznger/models"

	log "github.com/sirupsen/logrus"
)

type authService struct {
	uowFactory UnitOfWorkFactory
	tokens     *auth.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(uowFactory UnitOfWorkFactory, tokens *auth.TokenIssuer) AuthService {
	return &authService{
		uowFactory: uowFactory,
		tokens:     tokens,
	}
}

// Register creates a new user and issues a token pair.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.DisplayName == "" {
		return nil, nil, fmt.Errorf("%w: email, password and display name are required", ErrInvalidInput)
	}
	if req.Gender != models.GenderMale && req.Gender != models.GenderFemale {
		return nil, nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, req.Gender)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	profileImage := req.ProfileImage
	if profileImage == "" {
		profileImage = models.DefaultProfileImage(req.Gender)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	user := &models.User{
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Gender:       req.Gender,
		ProfileImage: profileImage,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issuePair(ctx, uow, user.ID)
	if err != nil {
		return nil, nil, err
	}

	uow.EventBus().Publish(events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
	})

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
	}).Info("User registered")

	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrBadCredentials
	}

	pair, err := s.issuePair(ctx, uow, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, pair, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return "", ErrInvalidToken
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The signature alone is not enough; a logged-out token has no row.
	stored, err := uow.RefreshTokenRepository().GetByToken(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if stored == nil || stored.UserID != userID || stored.ExpiresAt.Before(time.Now()) {
		return "", ErrInvalidToken
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.tokens.IssueAccess(userID)
}

// Logout revokes a refresh token. Unknown tokens are a no-op.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RefreshTokenRepository().Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PruneExpiredTokens removes refresh tokens whose expiry has passed.
func (s *authService) PruneExpiredTokens(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pruned, err := uow.RefreshTokenRepository().DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh tokens: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if pruned > 0 {
		log.WithField("count", pruned).Info("Pruned expired refresh tokens")
	}

	return pruned, nil
}

func (s *authService) issuePair(ctx context.Context, uow UnitOfWork, userID int64) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}

	refresh, expiresAt, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}

	err = uow.RefreshTokenRepository().Create(ctx, &models.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
