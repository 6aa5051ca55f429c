package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// Delivery is the shipment materialized from an accepted deal. The unique
// index on DealID guarantees at most one delivery per deal. Items are copies
// of the deal items at materialization time, never references.
type Delivery struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID        uuid.UUID            `gorm:"column:deal_id;type:uuid;not null;uniqueIndex:uq_deliveries_deal"`
	DriverID      *uuid.UUID           `gorm:"column:driver_id;type:uuid"`
	Status        enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'ready'"`
	Address       string               `gorm:"column:address;not null"`
	Note          *string              `gorm:"column:note"`
	SupplierShare int                  `gorm:"column:supplier_share;not null;default:50"`
	Items         []DeliveryItem       `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
	DeliveredAt   *time.Time           `gorm:"column:delivered_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
