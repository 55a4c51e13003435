package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

type Product struct {
	ID             uuid.UUID
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
	Rating         decimal.Decimal
	ReviewCount    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
