package deliveries

import (
	"context"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for deliveries and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	CreateDeliveryItems(ctx context.Context, items []models.DeliveryItem) error
	FindByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	FindWithItems(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	ListDriverDeliveries(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*DeliveryList, error)
	// ListOpen returns ready deliveries with no driver, joined with the deal
	// parties' cities so callers can match them against a driver's coverage.
	ListOpen(ctx context.Context, params pagination.Params) ([]OpenDelivery, error)
	// TransitionStatus applies updates only while the delivery still sits in
	// one of the expected statuses and reports how many rows matched.
	TransitionStatus(ctx context.Context, deliveryID uuid.UUID, expected []enums.DeliveryStatus, updates map[string]any) (int64, error)
	// Claim sets the driver only while the delivery is still ready and
	// unassigned, reporting how many rows matched.
	Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (int64, error)
	// SetDealDriverIfNull backfills the deal's driver after an open claim.
	SetDealDriverIfNull(ctx context.Context, dealID, driverID uuid.UUID) (int64, error)
}
