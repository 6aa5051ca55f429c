package dispatch

import (
	"context"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for driver requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.DriverRequest) (*models.DriverRequest, error)
	FindByID(ctx context.Context, requestID uuid.UUID) (*models.DriverRequest, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.DriverRequest, error)
	ListDriverInbox(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DriverRequestStatus) (*RequestList, error)
	// Resolve applies updates only while the request is still pending and
	// reports how many rows matched.
	Resolve(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error)
	// RejectOtherPending force-rejects every pending request of the deal
	// except the winning one.
	RejectOtherPending(ctx context.Context, dealID, winnerID uuid.UUID) (int64, error)
}
