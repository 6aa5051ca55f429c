package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// Product is a supplier catalog entry. Deal items snapshot its price at deal
// creation, so later edits never rewrite existing deals.
type Product struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID       uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null;index"`
	Name             string            `gorm:"column:name;not null"`
	Description      *string           `gorm:"column:description"`
	Unit             enums.ProductUnit `gorm:"column:unit;type:product_unit;not null"`
	Price            decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	MinOrderQuantity int               `gorm:"column:min_order_quantity;not null;default:1"`
	IsActive         bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
