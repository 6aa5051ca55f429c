package dispatch

import (
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestSummary exposes the fields returned in driver request lists.
type RequestSummary struct {
	ID                  uuid.UUID                 `json:"id"`
	DealID              uuid.UUID                 `json:"deal_id"`
	DriverID            uuid.UUID                 `json:"driver_id"`
	Status              enums.DriverRequestStatus `json:"status"`
	RequestedPrice      decimal.Decimal           `json:"requested_price"`
	DriverProposedPrice *decimal.Decimal          `json:"driver_proposed_price,omitempty"`
	FinalPrice          *decimal.Decimal          `json:"final_price,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
}

// RequestList wraps a paginated request page plus the next page cursor.
type RequestList struct {
	Requests   []RequestSummary `json:"requests"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
