package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// Deal is the agreement between a seller and a supplier. DriverID stays null
// until a driver request is accepted; terminal deals are kept for audit.
type Deal struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID          uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index"`
	SupplierID        uuid.UUID              `gorm:"column:supplier_id;type:uuid;not null;index"`
	DriverID          *uuid.UUID             `gorm:"column:driver_id;type:uuid"`
	Status            enums.DealStatus       `gorm:"column:status;type:deal_status;not null;default:'dealing'"`
	DeliveryHandling  enums.DeliveryHandling `gorm:"column:delivery_handling;type:delivery_handling;not null;default:'system_driver'"`
	DeliveryCostSplit int                    `gorm:"column:delivery_cost_split;not null;default:50"`
	CreatedByUserID   uuid.UUID              `gorm:"column:created_by_user_id;type:uuid;not null"`
	Items             []DealItem             `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	DriverRequests    []DriverRequest        `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
