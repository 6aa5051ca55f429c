package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// DriverRequest offers a deal's delivery to a specific driver at a price.
// The (deal_id, driver_id) pair is unique for the lifetime of the deal, so a
// driver is solicited at most once per deal.
type DriverRequest struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealID              uuid.UUID                 `gorm:"column:deal_id;type:uuid;not null;uniqueIndex:uq_driver_requests_deal_driver"`
	DriverID            uuid.UUID                 `gorm:"column:driver_id;type:uuid;not null;uniqueIndex:uq_driver_requests_deal_driver"`
	Status              enums.DriverRequestStatus `gorm:"column:status;type:driver_request_status;not null;default:'pending'"`
	RequestedPrice      decimal.Decimal           `gorm:"column:requested_price;type:numeric(12,2);not null"`
	DriverProposedPrice *decimal.Decimal          `gorm:"column:driver_proposed_price;type:numeric(12,2)"`
	FinalPrice          *decimal.Decimal          `gorm:"column:final_price;type:numeric(12,2)"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
