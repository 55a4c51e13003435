package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/starterkit/internal/models"
)

type CreateUserParams struct {
	Email          string
	HashedPassword string
	Name           string
	Role           string
	Avatar         *string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id, email or one of it's refresh tokens
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (models.User, error)
}

// RefreshToken repository interface
// Tokens stored here form the set of valid refresh tokens of their owner
type RefreshTokenRepo interface {
	// Add token to owner's set
	Save(ctx context.Context, token models.RefreshToken) error

	// Remove token from the set and return it
	// Only one of concurrent callers gets the token, others get apperrors.ErrRefreshTokenNotFound
	Take(ctx context.Context, token string) (models.RefreshToken, error)

	// Remove token from the set, absent token is not an error
	Delete(ctx context.Context, token string) error

	// Remove all user tokens, return number of removed
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Remove tokens expired before the moment, return number of removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// List user tokens ordered by creation time
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error)
}

type CreatePostParams struct {
	AuthorID      uuid.UUID
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Tags          []string
	FeaturedImage *string
	Slug          string
	ReadTime      int
}

type ListPostsFilter struct {
	Status string
	Tag    string // empty means any
	Limit  int
	Offset int
}

type PostRepo interface {
	// If slug is taken must return apperrors.ErrPostSlugTaken
	CreatePost(ctx context.Context, params CreatePostParams) (models.Post, error)

	// List posts newest first with author filled, return total number of matching posts too
	ListPosts(ctx context.Context, filter ListPostsFilter) ([]models.Post, int, error)
}

type CreateProductParams struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Images         []string
	Category       string
	Tags           []string
	SKU            string
	Stock          int
	Status         string
	Featured       bool
}

type ListProductsFilter struct {
	Category string // empty means any
	Status   string // empty means any
	Featured *bool  // nil means any
	Limit    int
	Offset   int
}

type ProductRepo interface {
	// If sku is taken must return apperrors.ErrProductSKUTaken
	CreateProduct(ctx context.Context, params CreateProductParams) (models.Product, error)

	// If product not found must return apperrors.ErrProductNotFound
	GetProductBySKU(ctx context.Context, sku string) (models.Product, error)

	// List products newest first, return total number of matching products too
	ListProducts(ctx context.Context, filter ListProductsFilter) ([]models.Product, int, error)
}

type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Post() PostRepo
	Product() ProductRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
