package deliveries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/pkg/db"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type driverDirectory interface {
	FindDriverByID(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error)
}

// Service materializes deals into deliveries and moves them to hand-off.
type Service interface {
	Materialize(ctx context.Context, input MaterializeInput) (*models.Delivery, error)
	Claim(ctx context.Context, input ClaimInput) (*models.Delivery, error)
	Start(ctx context.Context, input TransitInput) (*models.Delivery, error)
	Complete(ctx context.Context, input TransitInput) (*models.Delivery, error)
	Get(ctx context.Context, deliveryID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Delivery, error)
	ListForDriver(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*DeliveryList, error)
	ListAvailable(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params) ([]OpenDelivery, error)
}

// MaterializeInput captures the data required to turn an accepted deal into a delivery.
type MaterializeInput struct {
	DealID         uuid.UUID
	Address        string
	Note           *string
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// ClaimInput captures a driver claiming an open delivery.
type ClaimInput struct {
	DeliveryID     uuid.UUID
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// TransitInput captures a caller moving a delivery forward: the assigned
// driver, or the handling party when no driver is involved.
type TransitInput struct {
	DeliveryID     uuid.UUID
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// DeliveryCreatedEvent signals a delivery materialized from an accepted deal.
type DeliveryCreatedEvent struct {
	DeliveryID    uuid.UUID            `json:"delivery_id"`
	DealID        uuid.UUID            `json:"deal_id"`
	DriverID      *uuid.UUID           `json:"driver_id,omitempty"`
	Status        enums.DeliveryStatus `json:"status"`
	Address       string               `json:"address"`
	SupplierShare int                  `json:"supplier_share"`
}

// DeliveryClaimedEvent is emitted when a driver claims an open delivery.
type DeliveryClaimedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	DealID     uuid.UUID `json:"deal_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// DeliveryStartedEvent is emitted when transit begins, by the assigned
// driver or by the handling party of a driverless delivery.
type DeliveryStartedEvent struct {
	DeliveryID uuid.UUID  `json:"delivery_id"`
	DealID     uuid.UUID  `json:"deal_id"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
}

// DeliveryCompletedEvent surfaces the final hand-off of a delivery.
type DeliveryCompletedEvent struct {
	DeliveryID  uuid.UUID  `json:"delivery_id"`
	DealID      uuid.UUID  `json:"deal_id"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	DeliveredAt time.Time  `json:"delivered_at"`
}

type service struct {
	repo    Repository
	dealsRp deals.Repository
	tx      txRunner
	outbox  outboxPublisher
	drivers driverDirectory
	now     func() time.Time
}

// NewService builds a deliveries service with the required dependencies.
func NewService(repo Repository, dealsRepo deals.Repository, tx txRunner, outboxSvc outboxPublisher, drivers driverDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if dealsRepo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if drivers == nil {
		return nil, fmt.Errorf("driver directory required")
	}
	return &service{
		repo:    repo,
		dealsRp: dealsRepo,
		tx:      tx,
		outbox:  outboxSvc,
		drivers: drivers,
		now:     time.Now,
	}, nil
}

// materializableStatuses are the deal states that still admit delivery creation.
var materializableStatuses = []enums.DealStatus{
	enums.DealStatusAccepted,
	enums.DealStatusAssigningDriver,
}

func (s *service) Materialize(ctx context.Context, input MaterializeInput) (*models.Delivery, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	if input.ActorRole != enums.UserRoleSupplier && input.ActorRole != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only deal parties can create a delivery")
	}
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}

	var created *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dealsRepo := s.dealsRp.WithTx(tx)

		deal, err := dealsRepo.FindDealWithItems(ctx, input.DealID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if !isDealParty(deal, input.ActorProfileID, input.ActorRole) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
		}
		if !isMaterializable(deal.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal cannot be materialized in its current state")
		}
		if len(deal.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal has no items to deliver")
		}

		status := enums.DeliveryStatusScheduled
		if deal.DeliveryHandling == enums.DeliveryHandlingSystemDriver && deal.DriverID == nil {
			// No driver committed yet: park the delivery in the open pool.
			status = enums.DeliveryStatusReady
		}

		rows, err := dealsRepo.TransitionStatus(ctx, deal.ID, materializableStatuses,
			map[string]any{"status": enums.DealStatusInDelivery})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal cannot be materialized in its current state")
		}

		delivery := &models.Delivery{
			DealID:        deal.ID,
			DriverID:      deal.DriverID,
			Status:        status,
			Address:       address,
			Note:          input.Note,
			SupplierShare: deal.DeliveryCostSplit,
		}
		if _, err := repo.CreateDelivery(ctx, delivery); err != nil {
			if db.IsUniqueViolation(err, "uq_deliveries_deal") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "deal already has a delivery")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}

		// Items are copies, never references. Later deal edits must not
		// touch an in-flight delivery.
		items := make([]models.DeliveryItem, 0, len(deal.Items))
		for _, item := range deal.Items {
			items = append(items, models.DeliveryItem{
				DeliveryID: delivery.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
			})
		}
		if err := repo.CreateDeliveryItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery items")
		}
		delivery.Items = items

		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryCreated,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DeliveryCreatedEvent{
				DeliveryID:    delivery.ID,
				DealID:        deal.ID,
				DriverID:      delivery.DriverID,
				Status:        delivery.Status,
				Address:       delivery.Address,
				SupplierShare: delivery.SupplierShare,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Claim(ctx context.Context, input ClaimInput) (*models.Delivery, error) {
	if input.DeliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleDriver || input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only drivers can claim deliveries")
	}

	driver, err := s.drivers.FindDriverByID(ctx, input.ActorProfileID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "driver profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if !driver.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "driver is not available")
	}

	var claimed *models.Delivery
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		delivery, err := repo.FindByID(ctx, input.DeliveryID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}
		if delivery.Status != enums.DeliveryStatusReady || delivery.DriverID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not open for claims")
		}

		rows, err := repo.Claim(ctx, delivery.ID, driver.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim delivery")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "delivery was already claimed")
		}
		if _, err := repo.SetDealDriverIfNull(ctx, delivery.DealID, driver.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign driver to deal")
		}

		driverID := driver.ID
		delivery.DriverID = &driverID
		delivery.Status = enums.DeliveryStatusScheduled

		claimedAt := s.now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryClaimed,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DeliveryClaimedEvent{
				DeliveryID: delivery.ID,
				DealID:     delivery.DealID,
				DriverID:   driver.ID,
				ClaimedAt:  claimedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		claimed = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *service) Start(ctx context.Context, input TransitInput) (*models.Delivery, error) {
	if err := validateTransit(input); err != nil {
		return nil, err
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dealsRepo := s.dealsRp.WithTx(tx)

		delivery, err := s.loadTransitDelivery(ctx, repo, dealsRepo, input)
		if err != nil {
			return err
		}
		if delivery.Status != enums.DeliveryStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not scheduled")
		}

		rows, err := repo.TransitionStatus(ctx, delivery.ID,
			[]enums.DeliveryStatus{enums.DeliveryStatusScheduled},
			map[string]any{"status": enums.DeliveryStatusInTransit})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not scheduled")
		}
		delivery.Status = enums.DeliveryStatusInTransit

		startedAt := s.now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryStarted,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DeliveryStartedEvent{
				DeliveryID: delivery.ID,
				DealID:     delivery.DealID,
				DriverID:   delivery.DriverID,
				StartedAt:  startedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// completableStatuses are the delivery states a driver can finish from.
var completableStatuses = []enums.DeliveryStatus{
	enums.DeliveryStatusScheduled,
	enums.DeliveryStatusInTransit,
}

func (s *service) Complete(ctx context.Context, input TransitInput) (*models.Delivery, error) {
	if err := validateTransit(input); err != nil {
		return nil, err
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dealsRepo := s.dealsRp.WithTx(tx)

		delivery, err := s.loadTransitDelivery(ctx, repo, dealsRepo, input)
		if err != nil {
			return err
		}
		if delivery.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery was already completed")
		}

		deliveredAt := s.now().UTC()
		rows, err := repo.TransitionStatus(ctx, delivery.ID, completableStatuses,
			map[string]any{
				"status":       enums.DeliveryStatusDelivered,
				"delivered_at": deliveredAt,
			})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery was already completed")
		}
		delivery.Status = enums.DeliveryStatusDelivered
		delivery.DeliveredAt = &deliveredAt

		// Closing the delivery closes the deal.
		if _, err := dealsRepo.TransitionStatus(ctx, delivery.DealID,
			[]enums.DealStatus{enums.DealStatusInDelivery},
			map[string]any{"status": enums.DealStatusCompleted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete deal")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryCompleted,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DeliveryCompletedEvent{
				DeliveryID:  delivery.ID,
				DealID:      delivery.DealID,
				DriverID:    delivery.DriverID,
				DeliveredAt: deliveredAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, deliveryID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Delivery, error) {
	if deliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}

	delivery, err := s.repo.FindWithItems(ctx, deliveryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}

	switch actorRole {
	case enums.UserRoleDriver:
		if delivery.DriverID == nil || *delivery.DriverID != actorProfileID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this delivery does not belong to you")
		}
	case enums.UserRoleSupplier, enums.UserRoleSeller:
		deal, err := s.dealsRp.FindDealByID(ctx, delivery.DealID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if !isDealParty(deal, actorProfileID, actorRole) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this delivery does not belong to you")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot read deliveries")
	}
	return delivery, nil
}

func (s *service) ListForDriver(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*DeliveryList, error) {
	if driverProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	list, err := s.repo.ListDriverDeliveries(ctx, driverProfileID, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver deliveries")
	}
	return list, nil
}

func (s *service) ListAvailable(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params) ([]OpenDelivery, error) {
	if driverProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}

	driver, err := s.drivers.FindDriverByID(ctx, driverProfileID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "driver profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if !driver.IsAvailable {
		return []OpenDelivery{}, nil
	}

	open, err := s.repo.ListOpen(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open deliveries")
	}

	coverage := driverCoverage(driver)
	matched := make([]OpenDelivery, 0, len(open))
	for _, delivery := range open {
		if coversCity(coverage, delivery.SupplierCity) || coversCity(coverage, delivery.SellerCity) {
			matched = append(matched, delivery)
		}
	}
	return matched, nil
}

// loadTransitDelivery authorizes the caller to move the delivery: the
// assigned driver when one exists, otherwise the handling party of a
// driverless supplier- or seller-handled delivery.
func (s *service) loadTransitDelivery(ctx context.Context, repo Repository, dealsRepo deals.Repository, input TransitInput) (*models.Delivery, error) {
	delivery, err := repo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	if delivery.DriverID != nil {
		if input.ActorRole != enums.UserRoleDriver || *delivery.DriverID != input.ActorProfileID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this delivery does not belong to you")
		}
		return delivery, nil
	}
	if input.ActorRole == enums.UserRoleDriver {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this delivery does not belong to you")
	}

	deal, err := dealsRepo.FindDealByID(ctx, delivery.DealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if deal.DeliveryHandling == enums.DeliveryHandlingSystemDriver {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned driver can move a delivery")
	}
	if !isDealParty(deal, input.ActorProfileID, input.ActorRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this delivery does not belong to you")
	}
	return delivery, nil
}

func validateTransit(input TransitInput) error {
	if input.DeliveryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorProfileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	switch input.ActorRole {
	case enums.UserRoleDriver, enums.UserRoleSupplier, enums.UserRoleSeller:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot move a delivery")
	}
}

func driverCoverage(driver *models.DriverProfile) map[string]struct{} {
	coverage := make(map[string]struct{}, len(driver.ServiceAreas)+1)
	if city := strings.TrimSpace(driver.City); city != "" {
		coverage[strings.ToLower(city)] = struct{}{}
	}
	for _, area := range driver.ServiceAreas {
		if area = strings.TrimSpace(area); area != "" {
			coverage[strings.ToLower(area)] = struct{}{}
		}
	}
	return coverage
}

func coversCity(coverage map[string]struct{}, city string) bool {
	_, ok := coverage[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

func isDealParty(deal *models.Deal, actorProfileID uuid.UUID, actorRole enums.UserRole) bool {
	switch actorRole {
	case enums.UserRoleSupplier:
		return deal.SupplierID == actorProfileID
	case enums.UserRoleSeller:
		return deal.SellerID == actorProfileID
	default:
		return false
	}
}

func isMaterializable(status enums.DealStatus) bool {
	for _, candidate := range materializableStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func buildActor(userID, profileID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	profile := profileID
	return &outbox.ActorRef{
		UserID:    userID,
		ProfileID: &profile,
		Role:      string(role),
	}
}
