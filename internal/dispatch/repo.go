package dispatch

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

// NewRepository builds a driver request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.DriverRequest) (*models.DriverRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByID(ctx context.Context, requestID uuid.UUID) (*models.DriverRequest, error) {
	var request models.DriverRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.DriverRequest, error) {
	var requests []models.DriverRequest
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListDriverInbox(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DriverRequestStatus) (*RequestList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.DriverRequest{}).
		Where("driver_id = ?", driverID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var requests []models.DriverRequest
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}

	list := &RequestList{Requests: make([]RequestSummary, 0, len(requests))}
	if len(requests) > normalized {
		next := requests[normalized]
		requests = requests[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	for _, request := range requests {
		list.Requests = append(list.Requests, summarize(request))
	}
	return list, nil
}

func (r *repository) Resolve(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverRequest{}).
		Where("id = ? AND status = ?", requestID, enums.DriverRequestStatusPending).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) RejectOtherPending(ctx context.Context, dealID, winnerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DriverRequest{}).
		Where("deal_id = ? AND id <> ? AND status = ?", dealID, winnerID, enums.DriverRequestStatusPending).
		Update("status", enums.DriverRequestStatusRejected)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func summarize(request models.DriverRequest) RequestSummary {
	return RequestSummary{
		ID:                  request.ID,
		DealID:              request.DealID,
		DriverID:            request.DriverID,
		Status:              request.Status,
		RequestedPrice:      request.RequestedPrice,
		DriverProposedPrice: request.DriverProposedPrice,
		FinalPrice:          request.FinalPrice,
		CreatedAt:           request.CreatedAt,
	}
}
