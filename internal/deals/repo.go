package deals

import (
	"context"
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) CreateDealItems(ctx context.Context, items []models.DealItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindDealByID(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Where("id = ?", dealID).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) FindDealWithItems(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", dealID).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) ListSellerDeals(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error) {
	return r.listDeals(ctx, "deals.seller_id = ?", sellerID, params, filters)
}

func (r *repository) ListSupplierDeals(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error) {
	return r.listDeals(ctx, "deals.supplier_id = ?", supplierID, params, filters)
}

// dealListRow is the scan target for the joined deal list query.
type dealListRow struct {
	models.Deal
	SellerName   string
	SellerCity   string
	SupplierName string
	SupplierCity string
	TotalPrice   decimal.Decimal
	ItemCount    int
}

func (r *repository) listDeals(ctx context.Context, partyClause string, partyID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Select(`deals.*,
			seller_profiles.business_name AS seller_name,
			seller_profiles.city AS seller_city,
			supplier_profiles.company_name AS supplier_name,
			supplier_profiles.city AS supplier_city,
			COALESCE((SELECT SUM(deal_items.unit_price * deal_items.quantity) FROM deal_items WHERE deal_items.deal_id = deals.id), 0) AS total_price,
			COALESCE((SELECT COUNT(*) FROM deal_items WHERE deal_items.deal_id = deals.id), 0) AS item_count`).
		Joins("JOIN seller_profiles ON seller_profiles.id = deals.seller_id").
		Joins("JOIN supplier_profiles ON supplier_profiles.id = deals.supplier_id").
		Where(partyClause, partyID)

	if filters.Status != nil {
		query = query.Where("deals.status = ?", *filters.Status)
	}
	if filters.DeliveryHandling != nil {
		query = query.Where("deals.delivery_handling = ?", *filters.DeliveryHandling)
	}
	if filters.DateFrom != nil {
		query = query.Where("deals.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("deals.created_at <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where("(deals.created_at, deals.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []dealListRow
	if err := query.Order("deals.created_at DESC, deals.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	list := &DealList{Deals: make([]DealSummary, 0, len(rows))}
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	for _, row := range rows {
		list.Deals = append(list.Deals, DealSummary{
			ID:                row.ID,
			Status:            row.Status,
			DeliveryHandling:  row.DeliveryHandling,
			DeliveryCostSplit: row.DeliveryCostSplit,
			DriverID:          row.DriverID,
			TotalPrice:        row.TotalPrice,
			ItemCount:         row.ItemCount,
			Seller:            DealPartySummary{ID: row.SellerID, Name: row.SellerName, City: row.SellerCity},
			Supplier:          DealPartySummary{ID: row.SupplierID, Name: row.SupplierName, City: row.SupplierCity},
			CreatedAt:         row.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", dealID).
		Updates(updates).Error
}

func (r *repository) FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.DealStatusDealing, cutoff).
		Order("created_at ASC").
		Find(&deals).Error
	return deals, err
}

func (r *repository) TransitionStatus(ctx context.Context, dealID uuid.UUID, expected []enums.DealStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ? AND status IN ?", dealID, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) AssignDriver(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ? AND status = ? AND driver_id IS NULL", dealID, enums.DealStatusAssigningDriver).
		Update("driver_id", driverID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
