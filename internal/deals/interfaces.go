package deals

import (
	"context"
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for deals and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	CreateDealItems(ctx context.Context, items []models.DealItem) error
	FindDealByID(ctx context.Context, dealID uuid.UUID) (*models.Deal, error)
	FindDealWithItems(ctx context.Context, dealID uuid.UUID) (*models.Deal, error)
	ListSellerDeals(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error)
	ListSupplierDeals(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error)
	UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error
	FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error)
	// TransitionStatus applies updates only when the deal still sits in one of
	// the expected statuses and reports how many rows matched.
	TransitionStatus(ctx context.Context, dealID uuid.UUID, expected []enums.DealStatus, updates map[string]any) (int64, error)
	// AssignDriver sets driver_id only while the deal is assigning a driver
	// and no driver has been set, reporting how many rows matched.
	AssignDriver(ctx context.Context, dealID, driverID uuid.UUID) (int64, error)
}
