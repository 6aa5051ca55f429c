package deals

import (
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealFilters describe the inputs supported by the deal list surfaces.
type DealFilters struct {
	Status           *enums.DealStatus
	DeliveryHandling *enums.DeliveryHandling
	DateFrom         *time.Time
	DateTo           *time.Time
}

// DealPartySummary captures the counterparty fields returned in deal lists.
type DealPartySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city"`
}

// DealSummary exposes the aggregated fields returned in the deal lists.
type DealSummary struct {
	ID                uuid.UUID              `json:"id"`
	Status            enums.DealStatus       `json:"status"`
	DeliveryHandling  enums.DeliveryHandling `json:"delivery_handling"`
	DeliveryCostSplit int                    `json:"delivery_cost_split"`
	DriverID          *uuid.UUID             `json:"driver_id,omitempty"`
	TotalPrice        decimal.Decimal        `json:"total_price"`
	ItemCount         int                    `json:"item_count"`
	Seller            DealPartySummary       `json:"seller"`
	Supplier          DealPartySummary       `json:"supplier"`
	CreatedAt         time.Time              `json:"created_at"`
}

// DealList wraps the paginated deals plus the next page cursor.
type DealList struct {
	Deals      []DealSummary `json:"deals"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
