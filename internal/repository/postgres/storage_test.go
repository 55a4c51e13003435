package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/repository"
)

func Test_StorageInTx(t *testing.T) {
	t.Parallel()

	pool := startPostgres(t)

	params := func(email string) repository.CreateUserParams {
		return repository.CreateUserParams{Email: email, HashedPassword: "hash", Name: "Tx", Role: "user"}
	}

	t.Run("commit", func(t *testing.T) {
		withTx(pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			err := s.InTx(t.Context(), func(inner repository.Storage) error {
				_, err := inner.User().CreateUser(t.Context(), params("commit@example.com"))
				return err
			})

			require.NoError(t, err)
			_, err = s.User().GetUserByEmail(t.Context(), "commit@example.com")
			require.NoError(t, err, "committed user must be visible")
		})
	})

	t.Run("rollback on error", func(t *testing.T) {
		withTx(pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)
			boom := errors.New("boom")

			err := s.InTx(t.Context(), func(inner repository.Storage) error {
				if _, err := inner.User().CreateUser(t.Context(), params("rollback@example.com")); err != nil {
					return err
				}
				return boom
			})

			require.ErrorIs(t, err, boom)
			_, err = s.User().GetUserByEmail(t.Context(), "rollback@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound, "user must be rolled back")
		})
	})

	t.Run("rollback on panic", func(t *testing.T) {
		withTx(pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			require.Panics(t, func() {
				_ = s.InTx(t.Context(), func(inner repository.Storage) error {
					_, _ = inner.User().CreateUser(t.Context(), params("panic@example.com"))
					panic("boom")
				})
			})

			_, err := s.User().GetUserByEmail(t.Context(), "panic@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
