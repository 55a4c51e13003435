package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
	"github.com/nkiryanov/starterkit/internal/service/validate"
)

type ListFilter struct {
	Category string
	Status   string
	Featured *bool
	Page     int
	Limit    int
}

type NewProduct struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Images         []string
	Category       string
	Tags           []string
	SKU            string
	Stock          int
	Status         string // default active
	Featured       bool
}

// Product catalog
type ProductService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*ProductService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &ProductService{storage: storage}, nil
}

// List products newest first
func (s *ProductService) List(ctx context.Context, f ListFilter) (models.Page[models.Product], error) {
	f.Page, f.Limit = models.Paginate(f.Page, f.Limit)

	products, total, err := s.storage.Product().ListProducts(ctx, repository.ListProductsFilter{
		Category: strings.TrimSpace(f.Category),
		Status:   f.Status,
		Featured: f.Featured,
		Limit:    f.Limit,
		Offset:   models.Offset(f.Page, f.Limit),
	})
	if err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("can't list products. Err: %w", err)
	}

	return models.Page[models.Product]{Items: products, Page: f.Page, Limit: f.Limit, Total: total}, nil
}

// Get product by SKU, apperrors.ErrProductNotFound if there is no such
func (s *ProductService) Get(ctx context.Context, sku string) (models.Product, error) {
	return s.storage.Product().GetProductBySKU(ctx, normalizeSKU(sku))
}

// Create product
// Returns *apperrors.ValidationError or apperrors.ErrProductSKUTaken
func (s *ProductService) Create(ctx context.Context, np NewProduct) (models.Product, error) {
	err := validate.Product(np.Name, np.SKU, np.Category, np.Status, np.Price, np.CompareAtPrice, np.Stock, np.Images).Err()
	if err != nil {
		return models.Product{}, err
	}

	status := np.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	product, err := s.storage.Product().CreateProduct(ctx, repository.CreateProductParams{
		Name:           strings.TrimSpace(np.Name),
		Description:    strings.TrimSpace(np.Description),
		Price:          np.Price,
		CompareAtPrice: np.CompareAtPrice,
		Images:         np.Images,
		Category:       strings.TrimSpace(np.Category),
		Tags:           np.Tags,
		SKU:            normalizeSKU(np.SKU),
		Stock:          np.Stock,
		Status:         status,
		Featured:       np.Featured,
	})
	if err != nil {
		return product, fmt.Errorf("can't create product. Err: %w", err)
	}

	return product, nil
}

// SKUs are stored upper cased
func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
