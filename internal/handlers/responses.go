package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/starterkit/internal/models"
)

// Public user profile: no password hash, no refresh tokens
type userResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Avatar        *string   `json:"avatar,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func newPaginationResponse[T any](p models.Page[T]) paginationResponse {
	return paginationResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages()}
}

type postAuthorResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type postResponse struct {
	ID            uuid.UUID           `json:"id"`
	AuthorID      uuid.UUID           `json:"authorId"`
	Author        *postAuthorResponse `json:"author,omitempty"`
	Title         string              `json:"title"`
	Content       string              `json:"content"`
	Excerpt       string              `json:"excerpt"`
	Status        string              `json:"status"`
	Tags          []string            `json:"tags"`
	FeaturedImage *string             `json:"featuredImage,omitempty"`
	Slug          string              `json:"slug"`
	ReadTime      int                 `json:"readTime"`
	Views         int                 `json:"views"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func newPostResponse(p models.Post) postResponse {
	res := postResponse{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Status:        p.Status,
		Tags:          p.Tags,
		FeaturedImage: p.FeaturedImage,
		Slug:          p.Slug,
		ReadTime:      p.ReadTime,
		Views:         p.Views,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if p.Author != nil {
		res.Author = &postAuthorResponse{ID: p.Author.ID, Name: p.Author.Name, Email: p.Author.Email}
	}
	return res
}

type productResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Images         []string         `json:"images"`
	Category       string           `json:"category"`
	Tags           []string         `json:"tags"`
	SKU            string           `json:"sku"`
	Stock          int              `json:"stock"`
	Status         string           `json:"status"`
	Featured       bool             `json:"featured"`
	Rating         decimal.Decimal  `json:"rating"`
	ReviewCount    int              `json:"reviewCount"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func newProductResponse(p models.Product) productResponse {
	res := productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Images:         p.Images,
		Category:       p.Category,
		Tags:           p.Tags,
		SKU:            p.SKU,
		Stock:          p.Stock,
		Status:         p.Status,
		Featured:       p.Featured,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if res.Images == nil {
		res.Images = []string{}
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	return res
}

func mapSlice[T any, R any](items []T, fn func(T) R) []R {
	res := make([]R, 0, len(items))
	for _, item := range items {
		res = append(res, fn(item))
	}
	return res
}
