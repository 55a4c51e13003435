package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/starterkit/internal/service/user"
	"github.com/nkiryanov/starterkit/internal/service/validate"
)

type tokenManager interface {
	IssuePair(user models.User) (models.TokenPair, error)
	VerifyAccess(token string) (tokenmanager.Claims, error)
	VerifyRefresh(token string) (tokenmanager.Claims, error)
}

type userStore interface {
	CreateWithTokens(ctx context.Context, nu user.NewUser, issue user.IssueFunc) (models.User, models.TokenPair, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
	CheckCredentials(ctx context.Context, email string, password string) (models.User, error)
	AddRefreshToken(ctx context.Context, u models.User, token models.IssuedToken) error
	RemoveRefreshToken(ctx context.Context, token string) error
	ClearRefreshTokens(ctx context.Context, u models.User) error
	RotateRefreshToken(ctx context.Context, old string, issue user.IssueFunc) (models.User, models.TokenPair, error)
	PurgeExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	// Users registered with these emails get admin role
	AdminEmails []string
}

// Auth service
type AuthService struct {
	// Manager to issue and verify tokens (access and refresh)
	tokens tokenManager

	// Keeps users and their refresh token sets
	users userStore

	adminEmails map[string]struct{}
}

func NewService(cfg Config, tokens tokenManager, users userStore) (*AuthService, error) {
	if tokens == nil || users == nil {
		return nil, errors.New("token manager and user store must not be nil")
	}

	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = validate.NormalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}

	return &AuthService{
		tokens:      tokens,
		users:       users,
		adminEmails: admins,
	}, nil
}

// Register creates user and issues first token pair
// Returns *apperrors.ValidationError on bad input or apperrors.ErrUserAlreadyExists
func (s *AuthService) Register(ctx context.Context, email string, password string, name string) (models.User, models.TokenPair, error) {
	if err := validate.Registration(email, password, name).Err(); err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	role := models.RoleUser
	if _, ok := s.adminEmails[validate.NormalizeEmail(email)]; ok {
		role = models.RoleAdmin
	}

	u, pair, err := s.users.CreateWithTokens(ctx,
		user.NewUser{Email: email, Password: password, Name: name, Role: role},
		s.tokens.IssuePair,
	)
	if err != nil {
		return u, pair, fmt.Errorf("registration failed: %w", err)
	}

	return u, pair, nil
}

// Login checks credentials and issues new token pair
// Unknown email and wrong password both return apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	if err := validate.Login(email, password).Err(); err != nil {
		return models.User{}, pair, err
	}

	u, err := s.users.CheckCredentials(ctx, email, password)
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return u, pair, err
	case err != nil:
		return u, pair, fmt.Errorf("login failed: %w", err)
	}

	pair, err = s.tokens.IssuePair(u)
	if err != nil {
		return u, pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	if err := s.users.AddRefreshToken(ctx, u, pair.Refresh); err != nil {
		return u, models.TokenPair{}, err
	}

	return u, pair, nil
}

// Refresh rotates refresh token: the old one stops working, a new pair is returned
// If token invalid or expired: apperrors.ErrInvalidToken
// If token was rotated or revoked: apperrors.ErrRefreshTokenNotFound
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	if err := validate.RefreshToken(refresh).Err(); err != nil {
		return models.TokenPair{}, err
	}

	claims, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	_, pair, err := s.users.RotateRefreshToken(ctx, refresh, func(u models.User) (models.TokenPair, error) {
		if u.ID != claims.UserID {
			return models.TokenPair{}, fmt.Errorf("%w: token owner mismatch", apperrors.ErrInvalidToken)
		}
		return s.tokens.IssuePair(u)
	})
	if err != nil {
		return pair, fmt.Errorf("refresh failed: %w", err)
	}

	return pair, nil
}

// Logout removes refresh token from its owner set
// Unknown, expired or already removed token is not an error
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if err := validate.RefreshToken(refresh).Err(); err != nil {
		return err
	}

	return s.users.RemoveRefreshToken(ctx, refresh)
}

// LogoutAll revokes every refresh token of the user
func (s *AuthService) LogoutAll(ctx context.Context, u models.User) error {
	return s.users.ClearRefreshTokens(ctx, u)
}

// Authenticate returns the user the access token in 'Authorization' header value belongs to
// Errors: apperrors.ErrMissingHeader, apperrors.ErrMalformedHeader, apperrors.ErrInvalidToken, apperrors.ErrUserNotFound
func (s *AuthService) Authenticate(ctx context.Context, header string) (models.User, error) {
	if header == "" {
		return models.User{}, apperrors.ErrMissingHeader
	}

	access, err := tokenmanager.ExtractBearer(header)
	if err != nil {
		return models.User{}, err
	}

	claims, err := s.tokens.VerifyAccess(access)
	if err != nil {
		return models.User{}, err
	}

	return s.users.FindByID(ctx, claims.UserID)
}

// PurgeExpiredTokens drops refresh tokens that can't be used anymore
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.users.PurgeExpiredRefreshTokens(ctx, time.Now())
}
