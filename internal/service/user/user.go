package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
	"github.com/nkiryanov/starterkit/internal/service/validate"
)

// Interface to create or verify user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Verify known hashedPassword and user provided password
	// Must be protected against timing attacks
	Verify(hashedPassword string, password string) bool
}

// NewUser is registration data; empty Role means models.RoleUser
type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// IssueFunc issues token pair for the user inside store transaction
type IssueFunc func(user models.User) (models.TokenPair, error)

// UserService keeps user records and their refresh token sets
type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage

	// Hash compared against when email is unknown, computed on first use
	dummyOnce sync.Once
	dummyHash string
}

func NewService(hasher PasswordHasher, storage repository.Storage) (*UserService, error) {
	if hasher == nil || storage == nil {
		return nil, errors.New("hasher and storage must not be nil")
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Create user with normalized email and hashed password
// Email uniqueness is case insensitive: returns apperrors.ErrUserAlreadyExists
func (s *UserService) Create(ctx context.Context, email string, password string, name string) (models.User, error) {
	params, err := s.createParams(NewUser{Email: email, Password: password, Name: name})
	if err != nil {
		return models.User{}, err
	}

	return s.create(ctx, s.storage, params)
}

// CreateWithTokens creates user and adds refresh token of the issued pair to it's set
// Either both are stored or nothing is
func (s *UserService) CreateWithTokens(ctx context.Context, nu NewUser, issue IssueFunc) (models.User, models.TokenPair, error) {
	var (
		user models.User
		pair models.TokenPair
	)

	// Hash outside transaction: bcrypt is slow
	params, err := s.createParams(nu)
	if err != nil {
		return user, pair, err
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		user, err = s.create(ctx, tx, params)
		if err != nil {
			return err
		}

		pair, err = issue(user)
		if err != nil {
			return err
		}

		return addRefreshToken(ctx, tx, user, pair.Refresh)
	})

	return user, pair, err
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, validate.NormalizeEmail(email))
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, id)
}

// FindByRefreshToken returns the user whose set holds the token
func (s *UserService) FindByRefreshToken(ctx context.Context, token string) (models.User, error) {
	return s.storage.User().GetUserByRefreshToken(ctx, token)
}

// CheckCredentials returns the user the email and password belong to or apperrors.ErrInvalidCredentials.
// Unknown email costs one hash comparison too, so timing doesn't tell whether the account exists.
func (s *UserService) CheckCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.hasher.Verify(s.dummy(), password)
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, err
	}

	if !s.hasher.Verify(user.HashedPassword, password) {
		return models.User{}, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		// Error leaves empty hash: comparison then fails fast, login still fails
		s.dummyHash, _ = s.hasher.Hash("not a password of any user")
	})
	return s.dummyHash
}

func (s *UserService) AddRefreshToken(ctx context.Context, user models.User, token models.IssuedToken) error {
	return addRefreshToken(ctx, s.storage, user, token)
}

// RemoveRefreshToken removes token from the set of its owner; absent token is ok
func (s *UserService) RemoveRefreshToken(ctx context.Context, token string) error {
	return s.storage.Refresh().Delete(ctx, token)
}

func (s *UserService) ClearRefreshTokens(ctx context.Context, user models.User) error {
	_, err := s.storage.Refresh().DeleteByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("can't clear refresh tokens. Err: %w", err)
	}
	return nil
}

func (s *UserService) RefreshTokens(ctx context.Context, user models.User) ([]models.RefreshToken, error) {
	return s.storage.Refresh().ListByUser(ctx, user.ID)
}

// RotateRefreshToken swaps old token for a new one in a single transaction
// Returns apperrors.ErrRefreshTokenNotFound if old token is not in any set (rotated or revoked already)
func (s *UserService) RotateRefreshToken(ctx context.Context, old string, issue IssueFunc) (models.User, models.TokenPair, error) {
	var (
		user models.User
		pair models.TokenPair
	)

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		taken, err := tx.Refresh().Take(ctx, old)
		if err != nil {
			return err
		}

		user, err = tx.User().GetUserByID(ctx, taken.UserID)
		if err != nil {
			return err
		}

		pair, err = issue(user)
		if err != nil {
			return err
		}

		return addRefreshToken(ctx, tx, user, pair.Refresh)
	})

	return user, pair, err
}

// PurgeExpiredRefreshTokens removes tokens expired before the moment
func (s *UserService) PurgeExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.storage.Refresh().DeleteExpired(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("can't purge refresh tokens. Err: %w", err)
	}
	return n, nil
}

func (s *UserService) createParams(nu NewUser) (repository.CreateUserParams, error) {
	var params repository.CreateUserParams

	if nu.Password == "" {
		return params, errors.New("password must not be empty")
	}

	role := nu.Role
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleAdmin:
	default:
		return params, fmt.Errorf("unknown role %q", role)
	}

	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return params, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return repository.CreateUserParams{
		Email:          validate.NormalizeEmail(nu.Email),
		HashedPassword: hash,
		Name:           strings.TrimSpace(nu.Name),
		Role:           role,
	}, nil
}

func (s *UserService) create(ctx context.Context, storage repository.Storage, params repository.CreateUserParams) (models.User, error) {
	user, err := storage.User().CreateUser(ctx, params)
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}
	return user, nil
}

func addRefreshToken(ctx context.Context, storage repository.Storage, user models.User, token models.IssuedToken) error {
	err := storage.Refresh().Save(ctx, models.RefreshToken{
		Token:     token.Value,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: token.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("can't add refresh token. Err: %w", err)
	}
	return nil
}
