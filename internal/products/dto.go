package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// ProductDTO exposes catalog data in API responses.
type ProductDTO struct {
	ID               uuid.UUID         `json:"id"`
	SupplierID       uuid.UUID         `json:"supplier_id"`
	Name             string            `json:"name"`
	Description      *string           `json:"description,omitempty"`
	Unit             enums.ProductUnit `json:"unit"`
	Price            decimal.Decimal   `json:"price"`
	MinOrderQuantity int               `json:"min_order_quantity"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:               m.ID,
		SupplierID:       m.SupplierID,
		Name:             m.Name,
		Description:      m.Description,
		Unit:             m.Unit,
		Price:            m.Price,
		MinOrderQuantity: m.MinOrderQuantity,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ProductList wraps a paginated product page plus the next page cursor.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
