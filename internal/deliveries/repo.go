package deliveries

import (
	"context"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *repository) CreateDeliveryItems(ctx context.Context, items []models.DeliveryItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Where("id = ?", deliveryID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) FindWithItems(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", deliveryID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

type deliveryListRow struct {
	models.Delivery
	ItemCount int
}

func (r *repository) ListDriverDeliveries(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*DeliveryList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Select(`deliveries.*,
			COALESCE((SELECT COUNT(*) FROM delivery_items WHERE delivery_items.delivery_id = deliveries.id), 0) AS item_count`).
		Where("deliveries.driver_id = ?", driverID)
	if status != nil {
		query = query.Where("deliveries.status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(deliveries.created_at, deliveries.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []deliveryListRow
	if err := query.Order("deliveries.created_at DESC, deliveries.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	list := &DeliveryList{Deliveries: make([]DeliverySummary, 0, len(rows))}
	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	for _, row := range rows {
		list.Deliveries = append(list.Deliveries, DeliverySummary{
			ID:            row.ID,
			DealID:        row.DealID,
			DriverID:      row.DriverID,
			Status:        row.Status,
			Address:       row.Address,
			SupplierShare: row.SupplierShare,
			ItemCount:     row.ItemCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) ListOpen(ctx context.Context, params pagination.Params) ([]OpenDelivery, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	var rows []OpenDelivery
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Select(`deliveries.id,
			deliveries.deal_id,
			deliveries.address,
			deliveries.created_at,
			supplier_profiles.city AS supplier_city,
			seller_profiles.city AS seller_city`).
		Joins("JOIN deals ON deals.id = deliveries.deal_id").
		Joins("JOIN supplier_profiles ON supplier_profiles.id = deals.supplier_id").
		Joins("JOIN seller_profiles ON seller_profiles.id = deals.seller_id").
		Where("deliveries.status = ? AND deliveries.driver_id IS NULL", enums.DeliveryStatusReady).
		Order("deliveries.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TransitionStatus(ctx context.Context, deliveryID uuid.UUID, expected []enums.DeliveryStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status IN ?", deliveryID, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ? AND driver_id IS NULL", deliveryID, enums.DeliveryStatusReady).
		Updates(map[string]any{
			"driver_id": driverID,
			"status":    enums.DeliveryStatusScheduled,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) SetDealDriverIfNull(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ? AND driver_id IS NULL", dealID).
		Update("driver_id", driverID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
