// Package memory implements repository.Storage on top of process memory.
// It is used when no database is configured and in service level tests.
// Every operation and every transaction runs under one mutex, so the storage
// is safe for concurrent use and transactions are serializable.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

type data struct {
	users    map[uuid.UUID]models.User
	tokens   map[string]models.RefreshToken
	posts    []models.Post
	products []models.Product
}

func (d *data) clone() data {
	return data{
		users:    maps.Clone(d.users),
		tokens:   maps.Clone(d.tokens),
		posts:    append([]models.Post(nil), d.posts...),
		products: append([]models.Product(nil), d.products...),
	}
}

type Storage struct {
	mu   *sync.Mutex
	data *data

	// Set for storage passed to InTx callback: the mutex is held by the transaction
	inTx bool
}

func NewStorage() *Storage {
	return &Storage{
		mu: &sync.Mutex{},
		data: &data{
			users:  make(map[uuid.UUID]models.User),
			tokens: make(map[string]models.RefreshToken),
		},
	}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{s: s}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{s: s}
}

func (s *Storage) Post() repository.PostRepo {
	return &PostRepo{s: s}
}

func (s *Storage) Product() repository.ProductRepo {
	return &ProductRepo{s: s}
}

// InTx runs fn holding the storage lock. Changes made by fn are reverted if it fails
// fn must use the storage it gets, the outer one would deadlock
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	if s.inTx {
		return s.run(fn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Storage{mu: s.mu, data: s.data, inTx: true}
	return tx.run(fn)
}

func (s *Storage) run(fn func(repository.Storage) error) error {
	snapshot := s.data.clone()

	if err := fn(s); err != nil {
		*s.data = snapshot
		return err
	}

	return nil
}

// lock acquires the mutex unless the transaction already holds it
func (s *Storage) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func page[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
