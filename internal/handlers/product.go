package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/logger"
	"github.com/nkiryanov/starterkit/internal/models"
	"github.com/nkiryanov/starterkit/internal/service/product"
)

func handleListProducts(productService productService, l logger.Logger) http.Handler {
	type response struct {
		Products   []productResponse  `json:"products"`
		Pagination paginationResponse `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := newQueryParser(r.URL.Query())
		filter := product.ListFilter{
			Category: q.String("category"),
			Status:   q.String("status"),
			Featured: q.Bool("featured"),
			Page:     q.IntAtMost("page", models.MaxPage),
			Limit:    q.Int("limit"),
		}
		if fields := q.Fields(); fields != nil {
			render.ValidationFailed(w, fields)
			return
		}

		page, err := productService.List(r.Context(), filter)
		if err != nil {
			internalError(w, r, l, "Failed to list products", err)
			return
		}

		render.JSON(w, response{
			Products:   mapSlice(page.Items, newProductResponse),
			Pagination: newPaginationResponse(page),
		})
	})
}

func handleGetProduct(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := productService.Get(r.Context(), r.PathValue("sku"))

		switch {
		case err == nil:
			render.JSON(w, newProductResponse(p))
		case errors.Is(err, apperrors.ErrProductNotFound):
			render.ServiceError(w, "Product not found", http.StatusNotFound)
		default:
			internalError(w, r, l, "Failed to get product", err)
		}
	})
}

func handleCreateProduct(productService productService, l logger.Logger) http.Handler {
	type request struct {
		Name           string           `json:"name"`
		Description    string           `json:"description"`
		Price          decimal.Decimal  `json:"price"`
		CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
		Images         []string         `json:"images"`
		Category       string           `json:"category"`
		Tags           []string         `json:"tags"`
		SKU            string           `json:"sku"`
		Stock          int              `json:"stock"`
		Status         string           `json:"status"`
		Featured       bool             `json:"featured"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.Bind[request](w, r)
		if err != nil {
			return
		}

		created, err := productService.Create(r.Context(), product.NewProduct{
			Name:           data.Name,
			Description:    data.Description,
			Price:          data.Price,
			CompareAtPrice: data.CompareAtPrice,
			Images:         data.Images,
			Category:       data.Category,
			Tags:           data.Tags,
			SKU:            data.SKU,
			Stock:          data.Stock,
			Status:         data.Status,
			Featured:       data.Featured,
		})

		var verr *apperrors.ValidationError
		switch {
		case err == nil:
			render.JSONWithStatus(w, newProductResponse(created), http.StatusCreated)
		case errors.As(err, &verr):
			render.ValidationFailed(w, verr.Fields)
		case errors.Is(err, apperrors.ErrProductSKUTaken):
			render.ServiceError(w, "Product with this SKU already exists", http.StatusConflict)
		default:
			internalError(w, r, l, "Failed to create product", err)
		}
	})
}
