package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

type PostRepo struct {
	s *Storage
}

func (r *PostRepo) CreatePost(ctx context.Context, p repository.CreatePostParams) (models.Post, error) {
	defer r.s.lock()()

	if _, ok := r.s.data.users[p.AuthorID]; !ok {
		return models.Post{}, apperrors.ErrUserNotFound
	}
	for _, existing := range r.s.data.posts {
		if existing.Slug == p.Slug {
			return models.Post{}, apperrors.ErrPostSlugTaken
		}
	}

	now := time.Now()
	post := models.Post{
		ID:            uuid.New(),
		AuthorID:      p.AuthorID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Status:        p.Status,
		Tags:          append([]string{}, p.Tags...),
		FeaturedImage: p.FeaturedImage,
		Slug:          p.Slug,
		ReadTime:      p.ReadTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.data.posts = append(r.s.data.posts, post)

	return post, nil
}

func (r *PostRepo) ListPosts(ctx context.Context, f repository.ListPostsFilter) ([]models.Post, int, error) {
	defer r.s.lock()()

	matched := make([]models.Post, 0)
	for _, p := range r.s.data.posts {
		if p.Status != f.Status {
			continue
		}
		if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
			continue
		}

		author := r.s.data.users[p.AuthorID]
		p.Author = &models.PostAuthor{ID: author.ID, Name: author.Name, Email: author.Email}
		matched = append(matched, p)
	}

	// Newest first; insertion order breaks ties
	slices.Reverse(matched)
	slices.SortStableFunc(matched, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return page(matched, f.Limit, f.Offset), len(matched), nil
}

type ProductRepo struct {
	s *Storage
}

func (r *ProductRepo) CreateProduct(ctx context.Context, p repository.CreateProductParams) (models.Product, error) {
	defer r.s.lock()()

	for _, existing := range r.s.data.products {
		if existing.SKU == p.SKU {
			return models.Product{}, apperrors.ErrProductSKUTaken
		}
	}

	now := time.Now()
	product := models.Product{
		ID:             uuid.New(),
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Images:         append([]string{}, p.Images...),
		Category:       p.Category,
		Tags:           append([]string{}, p.Tags...),
		SKU:            p.SKU,
		Stock:          p.Stock,
		Status:         p.Status,
		Featured:       p.Featured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.data.products = append(r.s.data.products, product)

	return product, nil
}

func (r *ProductRepo) GetProductBySKU(ctx context.Context, sku string) (models.Product, error) {
	defer r.s.lock()()

	for _, p := range r.s.data.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return models.Product{}, apperrors.ErrProductNotFound
}

func (r *ProductRepo) ListProducts(ctx context.Context, f repository.ListProductsFilter) ([]models.Product, int, error) {
	defer r.s.lock()()

	matched := make([]models.Product, 0)
	for _, p := range r.s.data.products {
		switch {
		case f.Category != "" && p.Category != f.Category:
			continue
		case f.Status != "" && p.Status != f.Status:
			continue
		case f.Featured != nil && p.Featured != *f.Featured:
			continue
		}
		matched = append(matched, p)
	}

	slices.Reverse(matched)
	slices.SortStableFunc(matched, func(a, b models.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return page(matched, f.Limit, f.Offset), len(matched), nil
}
