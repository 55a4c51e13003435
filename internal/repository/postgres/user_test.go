package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

func createParams(email string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Email:          email,
		HashedPassword: "hashedpassword123",
		Name:           "Test User",
	}
}

func createTestUser(t *testing.T, tx pgx.Tx, email string) models.User {
	t.Helper()

	r := UserRepo{DB: tx}
	user, err := r.CreateUser(t.Context(), createParams(email))
	require.NoError(t, err, "test user should be created")

	return user
}

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := startPostgres(t)

	t.Run("create user ok", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "test@example.com",
				HashedPassword: "hashedpassword123",
				Name:           "Test User",
			})

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, "Test User", user.Name)
			assert.Equal(t, models.RoleUser, user.Role, "role should default to user")
			assert.Nil(t, user.Avatar)
			assert.False(t, user.EmailVerified)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create admin with avatar", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			avatar := "https://example.com/a.png"

			user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "admin@example.com",
				HashedPassword: "hash",
				Name:           "Admin",
				Role:           models.RoleAdmin,
				Avatar:         &avatar,
			})

			require.NoError(t, err)
			assert.Equal(t, models.RoleAdmin, user.Role)
			require.NotNil(t, user.Avatar)
			assert.Equal(t, avatar, *user.Avatar)
		})
	})

	t.Run("create duplicate email in other case", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			createTestUser(t, tx, "dup@example.com")
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "DUP@example.com",
				HashedPassword: "other",
				Name:           "Other",
			})

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, tx, "findbyid@example.com")

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ignores case", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, tx, "findbyemail@example.com")

			got, err := r.GetUserByEmail(t.Context(), "FindByEmail@Example.com")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("get user by refresh token", func(t *testing.T) {
		withTx(pg, t, func(tx pgx.Tx) {
			created := createTestUser(t, tx, "byrefresh@example.com")
			err := (&RefreshTokenRepo{DB: tx}).Save(t.Context(), models.RefreshToken{
				Token:     "refresh-token",
				UserID:    created.ID,
				CreatedAt: time.Now(),
				ExpiresAt: time.Now().Add(time.Hour),
			})
			require.NoError(t, err)
			r := UserRepo{DB: tx}

			got, err := r.GetUserByRefreshToken(t.Context(), "refresh-token")
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)

			_, err = r.GetUserByRefreshToken(t.Context(), "unknown-token")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
