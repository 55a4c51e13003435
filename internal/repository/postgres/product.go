package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/repository"
)

type ProductRepo struct {
	DB DBTX
}

const productColumns = `id, name, description, price, compare_at_price, images, category, tags, sku, stock, status, featured, rating, review_count, created_at, updated_at`

const createProduct = `-- name: CreateProduct
INSERT INTO products (id, name, description, price, compare_at_price, images, category, tags, sku, stock, status, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + productColumns

func (r *ProductRepo) CreateProduct(ctx context.Context, p repository.CreateProductParams) (models.Product, error) {
	images, tags := p.Images, p.Tags
	if images == nil {
		images = []string{}
	}
	if tags == nil {
		tags = []string{}
	}

	rows, _ := r.DB.Query(ctx, createProduct,
		uuid.New(), p.Name, p.Description, p.Price, p.CompareAtPrice, images, p.Category, tags, p.SKU, p.Stock, p.Status, p.Featured,
	)
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return product, apperrors.ErrProductSKUTaken
		}
		return product, fmt.Errorf("db error: %w", err)
	}

	return product, nil
}

const getProductBySKU = `-- name: GetProductBySKU
SELECT ` + productColumns + ` FROM products
WHERE sku = $1
`

func (r *ProductRepo) GetProductBySKU(ctx context.Context, sku string) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProductBySKU, sku)
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, pgx.ErrNoRows):
		return product, apperrors.ErrProductNotFound
	default:
		return product, fmt.Errorf("db error: %w", err)
	}
}

const productsFilter = `
WHERE ($1 = '' OR category = $1)
  AND ($2 = '' OR status = $2)
  AND ($3::boolean IS NULL OR featured = $3)
`

const countProducts = `-- name: CountProducts
SELECT COUNT(*) FROM products` + productsFilter

const listProducts = `-- name: ListProducts
SELECT ` + productColumns + ` FROM products` + productsFilter + `
ORDER BY created_at DESC, id
LIMIT $4 OFFSET $5
`

func (r *ProductRepo) ListProducts(ctx context.Context, f repository.ListProductsFilter) ([]models.Product, int, error) {
	var total int
	err := r.DB.QueryRow(ctx, countProducts, f.Category, f.Status, f.Featured).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, listProducts, f.Category, f.Status, f.Featured, f.Limit, f.Offset)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return products, total, nil
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CompareAtPrice, &p.Images, &p.Category, &p.Tags,
		&p.SKU, &p.Stock, &p.Status, &p.Featured, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
