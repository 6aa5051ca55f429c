package deliveries

import (
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/google/uuid"
)

// DeliverySummary exposes the fields returned in delivery lists.
type DeliverySummary struct {
	ID            uuid.UUID            `json:"id"`
	DealID        uuid.UUID            `json:"deal_id"`
	DriverID      *uuid.UUID           `json:"driver_id,omitempty"`
	Status        enums.DeliveryStatus `json:"status"`
	Address       string               `json:"address"`
	SupplierShare int                  `json:"supplier_share"`
	ItemCount     int                  `json:"item_count"`
	CreatedAt     time.Time            `json:"created_at"`
}

// DeliveryList wraps a paginated delivery page plus the next page cursor.
type DeliveryList struct {
	Deliveries []DeliverySummary `json:"deliveries"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// OpenDelivery is a ready, unassigned delivery offered to the driver pool,
// carrying the deal parties' cities for coverage matching.
type OpenDelivery struct {
	ID           uuid.UUID `json:"id"`
	DealID       uuid.UUID `json:"deal_id"`
	Address      string    `json:"address"`
	SupplierCity string    `json:"supplier_city"`
	SellerCity   string    `json:"seller_city"`
	CreatedAt    time.Time `json:"created_at"`
}
