package deals

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type supplierDirectory interface {
	FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.SupplierProfile, error)
}

type productCatalog interface {
	FindSupplierProducts(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

// RequestSweeper force-rejects the open driver requests of a deal.
type RequestSweeper interface {
	RejectOpen(ctx context.Context, tx *gorm.DB, dealID uuid.UUID) (int64, error)
}

// Service defines deal lifecycle operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateDealInput) (*models.Deal, error)
	Respond(ctx context.Context, input RespondInput) (*models.Deal, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Deal, error)
	Get(ctx context.Context, dealID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Deal, error)
	List(ctx context.Context, actorProfileID uuid.UUID, actorRole enums.UserRole, params pagination.Params, filters DealFilters) (*DealList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	suppliers supplierDirectory
	catalog   productCatalog
	sweeper   RequestSweeper
}

// DealDecision represents the decision a supplier can take on a deal.
type DealDecision string

const (
	DealDecisionAccept DealDecision = "accept"
	DealDecisionReject DealDecision = "reject"
)

// DealItemInput is one requested line of a new deal.
type DealItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateDealInput captures the data required to open a deal with a supplier.
type CreateDealInput struct {
	SupplierID        uuid.UUID
	DeliveryHandling  enums.DeliveryHandling
	DeliveryCostSplit *int
	Items             []DealItemInput
	ActorUserID       uuid.UUID
	ActorProfileID    uuid.UUID
	ActorRole         enums.UserRole
}

// RespondInput captures a supplier's accept/reject decision on a deal.
type RespondInput struct {
	DealID         uuid.UUID
	Decision       DealDecision
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// CancelInput captures a seller's cancellation of a deal.
type CancelInput struct {
	DealID         uuid.UUID
	Reason         string
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

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

// DealCanceledEvent is emitted whenever a seller cancels a pre-delivery deal.
type DealCanceledEvent struct {
	DealID     uuid.UUID `json:"deal_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	CanceledAt time.Time `json:"canceled_at"`
	Reason     string    `json:"reason,omitempty"`
}

const defaultCostSplit = 50

// NewService builds a deal service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, suppliers supplierDirectory, catalog productCatalog, sweeper RequestSweeper) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier directory required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if sweeper == nil {
		return nil, fmt.Errorf("request sweeper required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outbox,
		suppliers: suppliers,
		catalog:   catalog,
		sweeper:   sweeper,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateDealInput) (*models.Deal, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleSeller || input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can open deals")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	handling := input.DeliveryHandling
	if handling == "" {
		handling = enums.DeliveryHandlingSystemDriver
	}
	if !handling.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery handling")
	}
	if handling == enums.DeliveryHandlingSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller cannot set delivery handling to supplier")
	}

	costSplit := defaultCostSplit
	if input.DeliveryCostSplit != nil {
		costSplit = *input.DeliveryCostSplit
	}
	if costSplit < 0 || costSplit > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery cost split must be between 0 and 100")
	}
	// Split only applies when the platform dispatches a driver.
	if handling != enums.DeliveryHandlingSystemDriver {
		costSplit = defaultCostSplit
	}

	var created *models.Deal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		supplier, err := s.suppliers.FindSupplierByID(ctx, input.SupplierID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if !supplier.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "supplier is not active")
		}

		productIDs := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := s.catalog.FindSupplierProducts(ctx, supplier.ID, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		productsByID := make(map[uuid.UUID]models.Product, len(products))
		for _, product := range products {
			productsByID[product.ID] = product
		}

		deal := &models.Deal{
			SellerID:          input.ActorProfileID,
			SupplierID:        supplier.ID,
			Status:            enums.DealStatusDealing,
			DeliveryHandling:  handling,
			DeliveryCostSplit: costSplit,
			CreatedByUserID:   input.ActorUserID,
		}
		if _, err := repo.CreateDeal(ctx, deal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
		}

		total := decimal.Zero
		items := make([]models.DealItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, ok := productsByID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "product does not belong to this supplier or is inactive")
			}
			if item.Quantity < product.MinOrderQuantity {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("quantity for %s is below the minimum order of %d", product.Name, product.MinOrderQuantity))
			}
			items = append(items, models.DealItem{
				DealID:    deal.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if err := repo.CreateDealItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal items")
		}
		deal.Items = items

		event := outbox.DomainEvent{
			EventType:     enums.EventDealCreated,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DealCreatedEvent{
				DealID:           deal.ID,
				SellerID:         deal.SellerID,
				SupplierID:       deal.SupplierID,
				DeliveryHandling: deal.DeliveryHandling,
				TotalPrice:       total,
				ItemCount:        len(items),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = deal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*models.Deal, error) {
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleSupplier || input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the supplier can respond to a deal")
	}

	targetStatus, eventType, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}

	var updated *models.Deal
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deal, err := repo.FindDealByID(ctx, input.DealID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if deal.SupplierID != input.ActorProfileID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
		}
		if deal.Status != enums.DealStatusDealing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal is not awaiting supplier response")
		}

		rows, err := repo.TransitionStatus(ctx, deal.ID,
			[]enums.DealStatus{enums.DealStatusDealing},
			map[string]any{"status": targetStatus})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal is not awaiting supplier response")
		}
		deal.Status = targetStatus

		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DealDecisionEvent{
				DealID:     deal.ID,
				SellerID:   deal.SellerID,
				SupplierID: deal.SupplierID,
				Status:     deal.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = deal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// cancelableStatuses lists the deal states a seller may still walk away from.
var cancelableStatuses = []enums.DealStatus{
	enums.DealStatusDealing,
	enums.DealStatusAccepted,
	enums.DealStatusAssigningDriver,
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Deal, error) {
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleSeller || input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can cancel a deal")
	}

	var updated *models.Deal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deal, err := repo.FindDealByID(ctx, input.DealID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if deal.SellerID != input.ActorProfileID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
		}
		if !isCancelable(deal.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal can no longer be canceled")
		}

		rows, err := repo.TransitionStatus(ctx, deal.ID, cancelableStatuses,
			map[string]any{"status": enums.DealStatusCanceled, "driver_id": nil})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel deal")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal can no longer be canceled")
		}
		deal.Status = enums.DealStatusCanceled
		deal.DriverID = nil

		// Outstanding driver requests die with the deal.
		if _, err := s.sweeper.RejectOpen(ctx, tx, deal.ID); err != nil {
			return err
		}

		canceledAt := time.Now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventDealCanceled,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DealCanceledEvent{
				DealID:     deal.ID,
				SellerID:   deal.SellerID,
				SupplierID: deal.SupplierID,
				CanceledAt: canceledAt,
				Reason:     input.Reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = deal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, dealID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Deal, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}

	deal, err := s.repo.FindDealWithItems(ctx, dealID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if !canAccessDeal(deal, actorProfileID, actorRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
	}
	return deal, nil
}

func (s *service) List(ctx context.Context, actorProfileID uuid.UUID, actorRole enums.UserRole, params pagination.Params, filters DealFilters) (*DealList, error) {
	if actorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}

	switch actorRole {
	case enums.UserRoleSeller:
		list, err := s.repo.ListSellerDeals(ctx, actorProfileID, params, filters)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller deals")
		}
		return list, nil
	case enums.UserRoleSupplier:
		list, err := s.repo.ListSupplierDeals(ctx, actorProfileID, params, filters)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier deals")
		}
		return list, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list deals")
	}
}

func canAccessDeal(deal *models.Deal, actorProfileID uuid.UUID, actorRole enums.UserRole) bool {
	switch actorRole {
	case enums.UserRoleSupplier:
		return deal.SupplierID == actorProfileID
	case enums.UserRoleSeller:
		return deal.SellerID == actorProfileID
	case enums.UserRoleDriver:
		return deal.DriverID != nil && *deal.DriverID == actorProfileID
	default:
		return false
	}
}

func isCancelable(status enums.DealStatus) bool {
	for _, candidate := range cancelableStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func mapDecisionToStatus(decision DealDecision) (enums.DealStatus, enums.OutboxEventType, error) {
	switch decision {
	case DealDecisionAccept:
		return enums.DealStatusAccepted, enums.EventDealAccepted, nil
	case DealDecisionReject:
		return enums.DealStatusRejected, enums.EventDealRejected, nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}
}

func buildActor(userID, profileID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	profile := profileID
	return &outbox.ActorRef{
		UserID:    userID,
		ProfileID: &profile,
		Role:      string(role),
	}
}

type requestSweeperImpl struct{}

// NewRequestSweeper exposes the default driver request sweeper.
func NewRequestSweeper() RequestSweeper {
	return requestSweeperImpl{}
}

func (requestSweeperImpl) RejectOpen(ctx context.Context, tx *gorm.DB, dealID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required to sweep driver requests")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE driver_requests
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE deal_id = ? AND status IN (?, ?)
	`, enums.DriverRequestStatusRejected, dealID, enums.DriverRequestStatusPending, enums.DriverRequestStatusAccepted)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reject driver requests")
	}
	return res.RowsAffected, nil
}
