package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

type UserRepo struct {
	s *Storage
}

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, params.Email) {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
	}

	role := params.Role
	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Email:          params.Email,
		HashedPassword: params.HashedPassword,
		Name:           params.Name,
		Role:           role,
		Avatar:         params.Avatar,
	}
	r.s.data.users[user.ID] = user

	return user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	defer r.s.lock()()

	user, ok := r.s.data.users[id]
	if !ok {
		return user, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r *UserRepo) GetUserByRefreshToken(ctx context.Context, token string) (models.User, error) {
	defer r.s.lock()()

	t, ok := r.s.data.tokens[token]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	user, ok := r.s.data.users[t.UserID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

type RefreshTokenRepo struct {
	s *Storage
}

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	defer r.s.lock()()

	if _, ok := r.s.data.users[token.UserID]; !ok {
		return fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}
	if _, ok := r.s.data.tokens[token.Token]; ok {
		return fmt.Errorf("repo error: refresh token already saved")
	}

	r.s.data.tokens[token.Token] = token
	return nil
}

func (r *RefreshTokenRepo) Take(ctx context.Context, token string) (models.RefreshToken, error) {
	defer r.s.lock()()

	t, ok := r.s.data.tokens[token]
	if !ok {
		return t, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	}
	delete(r.s.data.tokens, token)
	return t, nil
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, token string) error {
	defer r.s.lock()()

	delete(r.s.data.tokens, token)
	return nil
}

func (r *RefreshTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.lock()()

	var n int64
	for key, t := range r.s.data.tokens {
		if t.UserID == userID {
			delete(r.s.data.tokens, key)
			n++
		}
	}
	return n, nil
}

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	defer r.s.lock()()

	var n int64
	for key, t := range r.s.data.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.s.data.tokens, key)
			n++
		}
	}
	return n, nil
}

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error) {
	defer r.s.lock()()

	tokens := make([]models.RefreshToken, 0)
	for _, t := range r.s.data.tokens {
		if t.UserID == userID {
			tokens = append(tokens, t)
		}
	}
	slices.SortFunc(tokens, func(a, b models.RefreshToken) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Token, b.Token)
	})
	return tokens, nil
}
