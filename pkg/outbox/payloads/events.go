package payloads

import (
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealCreatedEvent signals a new deal opened between a seller and a supplier.
type DealCreatedEvent struct {
	DealID           uuid.UUID              `json:"deal_id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	SupplierID       uuid.UUID              `json:"supplier_id"`
	DeliveryHandling enums.DeliveryHandling `json:"delivery_handling"`
	TotalPrice       decimal.Decimal        `json:"total_price"`
	ItemCount        int                    `json:"item_count"`
}

// DealDecisionEvent is emitted when a supplier accepts or rejects a deal.
type DealDecisionEvent struct {
	DealID     uuid.UUID        `json:"deal_id"`
	SellerID   uuid.UUID        `json:"seller_id"`
	SupplierID uuid.UUID        `json:"supplier_id"`
	Status     enums.DealStatus `json:"status"`
}

// DealCanceledEvent is emitted whenever a party cancels a pre-delivery deal.
type DealCanceledEvent struct {
	DealID     uuid.UUID `json:"deal_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	CanceledAt time.Time `json:"canceled_at"`
	Reason     string    `json:"reason,omitempty"`
}

// DealExpiredEvent describes the payload when stale negotiations expire.
type DealExpiredEvent struct {
	DealID     uuid.UUID `json:"dealId"`
	SellerID   uuid.UUID `json:"sellerId"`
	SupplierID uuid.UUID `json:"supplierId"`
	ExpiredAt  time.Time `json:"expiredAt"`
	TTLDays    *int      `json:"ttl_days,omitempty"`
}

// DriverRequestedEvent tells downstream systems a driver was asked to haul a deal.
type DriverRequestedEvent struct {
	RequestID      uuid.UUID       `json:"request_id"`
	DealID         uuid.UUID       `json:"deal_id"`
	DriverID       uuid.UUID       `json:"driver_id"`
	RequestedPrice decimal.Decimal `json:"requested_price"`
}

// DealDriverAssignedEvent is emitted when a driver request wins the assignment.
type DealDriverAssignedEvent struct {
	DealID     uuid.UUID        `json:"deal_id"`
	RequestID  uuid.UUID        `json:"request_id"`
	DriverID   uuid.UUID        `json:"driver_id"`
	FinalPrice *decimal.Decimal `json:"final_price,omitempty"`
}

// DeliveryCreatedEvent signals a delivery materialized from an accepted deal.
type DeliveryCreatedEvent struct {
	DeliveryID    uuid.UUID            `json:"delivery_id"`
	DealID        uuid.UUID            `json:"deal_id"`
	DriverID      *uuid.UUID           `json:"driver_id,omitempty"`
	Status        enums.DeliveryStatus `json:"status"`
	Address       string               `json:"address"`
	SupplierShare int                  `json:"supplier_share"`
}

// DeliveryClaimedEvent is emitted when a driver claims an open delivery.
type DeliveryClaimedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	DealID     uuid.UUID `json:"deal_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// DeliveryStartedEvent is emitted when transit begins, by the assigned
// driver or by the handling party of a driverless delivery.
type DeliveryStartedEvent struct {
	DeliveryID uuid.UUID  `json:"delivery_id"`
	DealID     uuid.UUID  `json:"deal_id"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
}

// DeliveryCompletedEvent surfaces the final hand-off of a delivery.
type DeliveryCompletedEvent struct {
	DeliveryID  uuid.UUID  `json:"delivery_id"`
	DealID      uuid.UUID  `json:"deal_id"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	DeliveredAt time.Time  `json:"delivered_at"`
}
