package deliveries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubDeliveriesRepo struct {
	delivery       *models.Delivery
	createErr      error
	createdItems   []models.DeliveryItem
	open           []OpenDelivery
	transitionRows int64
	transitions    []map[string]any
	claimRows      int64
	claimedBy      uuid.UUID
	backfilledDeal uuid.UUID
}

func (s *stubDeliveriesRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubDeliveriesRepo) CreateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	s.delivery = delivery
	return delivery, nil
}

func (s *stubDeliveriesRepo) CreateDeliveryItems(ctx context.Context, items []models.DeliveryItem) error {
	s.createdItems = append(s.createdItems, items...)
	return nil
}

func (s *stubDeliveriesRepo) FindByID(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	if s.delivery == nil || s.delivery.ID != deliveryID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.delivery, nil
}

func (s *stubDeliveriesRepo) FindWithItems(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	return s.FindByID(ctx, deliveryID)
}

func (s *stubDeliveriesRepo) ListDriverDeliveries(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*DeliveryList, error) {
	return &DeliveryList{}, nil
}

func (s *stubDeliveriesRepo) ListOpen(ctx context.Context, params pagination.Params) ([]OpenDelivery, error) {
	return s.open, nil
}

func (s *stubDeliveriesRepo) TransitionStatus(ctx context.Context, deliveryID uuid.UUID, expected []enums.DeliveryStatus, updates map[string]any) (int64, error) {
	s.transitions = append(s.transitions, updates)
	return s.transitionRows, nil
}

func (s *stubDeliveriesRepo) Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (int64, error) {
	if s.claimRows > 0 {
		s.claimedBy = driverID
	}
	return s.claimRows, nil
}

func (s *stubDeliveriesRepo) SetDealDriverIfNull(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	s.backfilledDeal = dealID
	return 1, nil
}

type stubDealsRepo struct {
	deal            *models.Deal
	transitionRows  int64
	dealTransitions []map[string]any
}

func (s *stubDealsRepo) WithTx(tx *gorm.DB) deals.Repository {
	return s
}

func (s *stubDealsRepo) CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	panic("not implemented")
}

func (s *stubDealsRepo) CreateDealItems(ctx context.Context, items []models.DealItem) error {
	panic("not implemented")
}

func (s *stubDealsRepo) FindDealByID(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	if s.deal == nil || s.deal.ID != dealID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.deal, nil
}

func (s *stubDealsRepo) FindDealWithItems(ctx context.Context, dealID uuid.UUID) (*models.Deal, error) {
	return s.FindDealByID(ctx, dealID)
}

func (s *stubDealsRepo) ListSellerDeals(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters deals.DealFilters) (*deals.DealList, error) {
	panic("not implemented")
}

func (s *stubDealsRepo) ListSupplierDeals(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters deals.DealFilters) (*deals.DealList, error) {
	panic("not implemented")
}

func (s *stubDealsRepo) UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubDealsRepo) TransitionStatus(ctx context.Context, dealID uuid.UUID, expected []enums.DealStatus, updates map[string]any) (int64, error) {
	s.dealTransitions = append(s.dealTransitions, updates)
	return s.transitionRows, nil
}

func (s *stubDealsRepo) FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error) {
	return nil, nil
}

func (s *stubDealsRepo) AssignDriver(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	panic("not implemented")
}

type stubDrivers struct {
	driver *models.DriverProfile
}

func (s *stubDrivers) FindDriverByID(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error) {
	if s.driver == nil || s.driver.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.driver, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func acceptedDeal(sellerID, supplierID uuid.UUID) *models.Deal {
	dealID := uuid.New()
	productID := uuid.New()
	return &models.Deal{
		ID:                dealID,
		SellerID:          sellerID,
		SupplierID:        supplierID,
		Status:            enums.DealStatusAccepted,
		DeliveryHandling:  enums.DeliveryHandlingSystemDriver,
		DeliveryCostSplit: 70,
		Items: []models.DealItem{{
			ID:        uuid.New(),
			DealID:    dealID,
			ProductID: productID,
			Quantity:  4,
			UnitPrice: decimal.NewFromInt(25),
		}},
	}
}

func TestMaterializeOpenPool(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	repo := &stubDeliveriesRepo{}
	dealsRepo := &stubDealsRepo{deal: deal, transitionRows: 1}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	delivery, err := svc.Materialize(context.Background(), MaterializeInput{
		DealID:         deal.ID,
		Address:        "12 Dock Rd",
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusReady {
		t.Fatalf("expected ready delivery got %s", delivery.Status)
	}
	if delivery.DriverID != nil {
		t.Fatal("expected open delivery without driver")
	}
	if delivery.SupplierShare != 70 {
		t.Fatalf("expected supplier share from deal got %d", delivery.SupplierShare)
	}
	if len(repo.createdItems) != 1 {
		t.Fatalf("expected 1 delivery item got %d", len(repo.createdItems))
	}
	if !repo.createdItems[0].UnitPrice.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected copied unit price got %s", repo.createdItems[0].UnitPrice)
	}
	if len(dealsRepo.dealTransitions) != 1 || dealsRepo.dealTransitions[0]["status"] != enums.DealStatusInDelivery {
		t.Fatalf("expected deal moved to in_delivery got %+v", dealsRepo.dealTransitions)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDeliveryCreated {
		t.Fatalf("expected delivery created event got %+v", publisher.events)
	}
}

func TestMaterializeWithAssignedDriver(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	driverID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusAssigningDriver
	deal.DriverID = &driverID
	repo := &stubDeliveriesRepo{}
	dealsRepo := &stubDealsRepo{deal: deal, transitionRows: 1}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	delivery, err := svc.Materialize(context.Background(), MaterializeInput{
		DealID:         deal.ID,
		Address:        "12 Dock Rd",
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusScheduled {
		t.Fatalf("expected scheduled delivery got %s", delivery.Status)
	}
	if delivery.DriverID == nil || *delivery.DriverID != driverID {
		t.Fatalf("expected delivery to carry the deal driver got %v", delivery.DriverID)
	}
}

func TestMaterializeTwice(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	repo := &stubDeliveriesRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "uq_deliveries_deal"`),
	}
	dealsRepo := &stubDealsRepo{deal: deal, transitionRows: 1}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Materialize(context.Background(), MaterializeInput{
		DealID:         deal.ID,
		Address:        "12 Dock Rd",
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestMaterializeBeforeAcceptance(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusDealing
	dealsRepo := &stubDealsRepo{deal: deal}
	svc, _ := NewService(&stubDeliveriesRepo{}, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Materialize(context.Background(), MaterializeInput{
		DealID:         deal.ID,
		Address:        "12 Dock Rd",
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestClaimOpenDelivery(t *testing.T) {
	driverID := uuid.New()
	deliveryID := uuid.New()
	dealID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: dealID,
			Status: enums.DeliveryStatusReady,
		},
		claimRows: 1,
	}
	publisher := &stubOutboxPublisher{}
	drivers := &stubDrivers{driver: &models.DriverProfile{ID: driverID, IsAvailable: true}}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, publisher, drivers)

	delivery, err := svc.Claim(context.Background(), ClaimInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusScheduled {
		t.Fatalf("expected scheduled delivery got %s", delivery.Status)
	}
	if repo.claimedBy != driverID {
		t.Fatalf("expected claim by driver got %s", repo.claimedBy)
	}
	if repo.backfilledDeal != dealID {
		t.Fatalf("expected deal driver backfill got %s", repo.backfilledDeal)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDeliveryClaimed {
		t.Fatalf("expected delivery claimed event got %+v", publisher.events)
	}
}

func TestClaimLosesRace(t *testing.T) {
	driverID := uuid.New()
	deliveryID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: uuid.New(),
			Status: enums.DeliveryStatusReady,
		},
		claimRows: 0,
	}
	drivers := &stubDrivers{driver: &models.DriverProfile{ID: driverID, IsAvailable: true}}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, drivers)

	_, err := svc.Claim(context.Background(), ClaimInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestStartRequiresAssignedDriver(t *testing.T) {
	deliveryID := uuid.New()
	assigned := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:       deliveryID,
			DealID:   uuid.New(),
			DriverID: &assigned,
			Status:   enums.DeliveryStatusScheduled,
		},
		transitionRows: 1,
	}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Start(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: uuid.New(),
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestCompleteClosesDeal(t *testing.T) {
	deliveryID := uuid.New()
	dealID := uuid.New()
	driverID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:       deliveryID,
			DealID:   dealID,
			DriverID: &driverID,
			Status:   enums.DeliveryStatusInTransit,
		},
		transitionRows: 1,
	}
	dealsRepo := &stubDealsRepo{transitionRows: 1}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	delivery, err := svc.Complete(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered got %s", delivery.Status)
	}
	if delivery.DeliveredAt == nil {
		t.Fatal("expected delivered_at set")
	}
	if len(dealsRepo.dealTransitions) != 1 || dealsRepo.dealTransitions[0]["status"] != enums.DealStatusCompleted {
		t.Fatalf("expected deal completed got %+v", dealsRepo.dealTransitions)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDeliveryCompleted {
		t.Fatalf("expected delivery completed event got %+v", publisher.events)
	}
}

func TestCompleteTwice(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	deliveredAt := time.Now().UTC()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:          deliveryID,
			DealID:      uuid.New(),
			DriverID:    &driverID,
			Status:      enums.DeliveryStatusDelivered,
			DeliveredAt: &deliveredAt,
		},
	}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Complete(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestStartByHandlingSupplier(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusInDelivery
	deal.DeliveryHandling = enums.DeliveryHandlingSupplier
	deliveryID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: deal.ID,
			Status: enums.DeliveryStatusScheduled,
		},
		transitionRows: 1,
	}
	dealsRepo := &stubDealsRepo{deal: deal}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	delivery, err := svc.Start(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusInTransit {
		t.Fatalf("expected in_transit got %s", delivery.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDeliveryStarted {
		t.Fatalf("expected delivery started event got %+v", publisher.events)
	}
}

func TestCompleteByHandlingSeller(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusInDelivery
	deal.DeliveryHandling = enums.DeliveryHandlingSeller
	deliveryID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: deal.ID,
			Status: enums.DeliveryStatusScheduled,
		},
		transitionRows: 1,
	}
	dealsRepo := &stubDealsRepo{deal: deal, transitionRows: 1}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	delivery, err := svc.Complete(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if delivery.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered got %s", delivery.Status)
	}
	if len(dealsRepo.dealTransitions) != 1 || dealsRepo.dealTransitions[0]["status"] != enums.DealStatusCompleted {
		t.Fatalf("expected deal completed got %+v", dealsRepo.dealTransitions)
	}
}

func TestCompleteByNonHandlingParty(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusInDelivery
	deal.DeliveryHandling = enums.DeliveryHandlingSupplier
	deliveryID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: deal.ID,
			Status: enums.DeliveryStatusScheduled,
		},
	}
	svc, _ := NewService(repo, &stubDealsRepo{deal: deal}, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	// A supplier outside the deal cannot move the delivery.
	_, err := svc.Complete(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: uuid.New(),
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestCompleteUnclaimedOpenDelivery(t *testing.T) {
	sellerID := uuid.New()
	supplierID := uuid.New()
	deal := acceptedDeal(sellerID, supplierID)
	deal.Status = enums.DealStatusInDelivery
	deliveryID := uuid.New()
	repo := &stubDeliveriesRepo{
		delivery: &models.Delivery{
			ID:     deliveryID,
			DealID: deal.ID,
			Status: enums.DeliveryStatusReady,
		},
	}
	svc, _ := NewService(repo, &stubDealsRepo{deal: deal}, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	// System-driver handling keeps driverless deliveries with dispatch.
	_, err := svc.Complete(context.Background(), TransitInput{
		DeliveryID:     deliveryID,
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestListAvailableFiltersByCoverage(t *testing.T) {
	driverID := uuid.New()
	inArea := OpenDelivery{ID: uuid.New(), DealID: uuid.New(), SupplierCity: "Monterrey", SellerCity: "Saltillo"}
	outOfArea := OpenDelivery{ID: uuid.New(), DealID: uuid.New(), SupplierCity: "Tijuana", SellerCity: "Mexicali"}
	repo := &stubDeliveriesRepo{open: []OpenDelivery{inArea, outOfArea}}
	drivers := &stubDrivers{driver: &models.DriverProfile{
		ID:           driverID,
		City:         "Monterrey",
		ServiceAreas: []string{"Apodaca"},
		IsAvailable:  true,
	}}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, drivers)

	open, err := svc.ListAvailable(context.Background(), driverID, pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(open) != 1 || open[0].ID != inArea.ID {
		t.Fatalf("expected only in-area delivery got %+v", open)
	}
}

func TestListAvailableUnavailableDriver(t *testing.T) {
	driverID := uuid.New()
	repo := &stubDeliveriesRepo{open: []OpenDelivery{{ID: uuid.New(), SupplierCity: "Monterrey"}}}
	drivers := &stubDrivers{driver: &models.DriverProfile{ID: driverID, City: "Monterrey", IsAvailable: false}}
	svc, _ := NewService(repo, &stubDealsRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, drivers)

	open, err := svc.ListAvailable(context.Background(), driverID, pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no deliveries for unavailable driver got %+v", open)
	}
}
