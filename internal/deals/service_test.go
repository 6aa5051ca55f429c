package deals

import (
	"context"
	"testing"
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

type stubDealsRepo struct {
	deal           *models.Deal
	createdItems   []models.DealItem
	transitionRows int64
	transitions    []map[string]any
	expectedSeen   [][]enums.DealStatus
}

func (s *stubDealsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubDealsRepo) CreateDeal(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	s.deal = deal
	return deal, nil
}

func (s *stubDealsRepo) CreateDealItems(ctx context.Context, items []models.DealItem) error {
	s.createdItems = append(s.createdItems, items...)
	return nil
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

func (s *stubDealsRepo) ListSellerDeals(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error) {
	return &DealList{}, nil
}

func (s *stubDealsRepo) ListSupplierDeals(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters DealFilters) (*DealList, error) {
	return &DealList{}, nil
}

func (s *stubDealsRepo) UpdateDeal(ctx context.Context, dealID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubDealsRepo) TransitionStatus(ctx context.Context, dealID uuid.UUID, expected []enums.DealStatus, updates map[string]any) (int64, error) {
	s.expectedSeen = append(s.expectedSeen, expected)
	s.transitions = append(s.transitions, updates)
	return s.transitionRows, nil
}

func (s *stubDealsRepo) FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error) {
	return nil, nil
}

func (s *stubDealsRepo) AssignDriver(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	return s.transitionRows, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSupplierDirectory struct {
	supplier *models.SupplierProfile
}

func (s *stubSupplierDirectory) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.SupplierProfile, error) {
	if s.supplier == nil || s.supplier.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.supplier, nil
}

type stubProductCatalog struct {
	products []models.Product
}

func (s *stubProductCatalog) FindSupplierProducts(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}

type stubSweeper struct {
	calls []uuid.UUID
}

func (s *stubSweeper) RejectOpen(ctx context.Context, tx *gorm.DB, dealID uuid.UUID) (int64, error) {
	s.calls = append(s.calls, dealID)
	return int64(len(s.calls)), nil
}

func newTestService(repo *stubDealsRepo, publisher *stubOutboxPublisher, suppliers *stubSupplierDirectory, catalog *stubProductCatalog, sweeper *stubSweeper) Service {
	svc, err := NewService(repo, stubTxRunner{}, publisher, suppliers, catalog, sweeper)
	if err != nil {
		panic(err)
	}
	return svc
}

func TestCreateDealSnapshotsPrices(t *testing.T) {
	supplierID := uuid.New()
	sellerID := uuid.New()
	productID := uuid.New()
	repo := &stubDealsRepo{}
	publisher := &stubOutboxPublisher{}
	suppliers := &stubSupplierDirectory{supplier: &models.SupplierProfile{ID: supplierID, IsActive: true}}
	catalog := &stubProductCatalog{products: []models.Product{{
		ID:               productID,
		SupplierID:       supplierID,
		Name:             "gravel",
		Price:            decimal.NewFromInt(120),
		MinOrderQuantity: 2,
		IsActive:         true,
	}}}
	svc := newTestService(repo, publisher, suppliers, catalog, &stubSweeper{})

	deal, err := svc.Create(context.Background(), CreateDealInput{
		SupplierID:     supplierID,
		Items:          []DealItemInput{{ProductID: productID, Quantity: 5}},
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if deal.Status != enums.DealStatusDealing {
		t.Fatalf("expected status dealing got %s", deal.Status)
	}
	if deal.DeliveryHandling != enums.DeliveryHandlingSystemDriver {
		t.Fatalf("expected default handling system_driver got %s", deal.DeliveryHandling)
	}
	if deal.DeliveryCostSplit != defaultCostSplit {
		t.Fatalf("expected default cost split got %d", deal.DeliveryCostSplit)
	}
	if len(repo.createdItems) != 1 {
		t.Fatalf("expected 1 deal item got %d", len(repo.createdItems))
	}
	if !repo.createdItems[0].UnitPrice.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected snapshot unit price 120 got %s", repo.createdItems[0].UnitPrice)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDealCreated {
		t.Fatalf("expected deal created event got %+v", publisher.events)
	}
}

func TestCreateDealBelowMinimumOrder(t *testing.T) {
	supplierID := uuid.New()
	productID := uuid.New()
	suppliers := &stubSupplierDirectory{supplier: &models.SupplierProfile{ID: supplierID, IsActive: true}}
	catalog := &stubProductCatalog{products: []models.Product{{
		ID:               productID,
		SupplierID:       supplierID,
		Name:             "cement",
		Price:            decimal.NewFromInt(80),
		MinOrderQuantity: 10,
		IsActive:         true,
	}}}
	svc := newTestService(&stubDealsRepo{}, &stubOutboxPublisher{}, suppliers, catalog, &stubSweeper{})

	_, err := svc.Create(context.Background(), CreateDealInput{
		SupplierID:     supplierID,
		Items:          []DealItemInput{{ProductID: productID, Quantity: 3}},
		ActorUserID:    uuid.New(),
		ActorProfileID: uuid.New(),
		ActorRole:      enums.UserRoleSeller,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestCreateDealRequiresSeller(t *testing.T) {
	svc := newTestService(&stubDealsRepo{}, &stubOutboxPublisher{}, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	_, err := svc.Create(context.Background(), CreateDealInput{
		SupplierID:     uuid.New(),
		Items:          []DealItemInput{{ProductID: uuid.New(), Quantity: 1}},
		ActorUserID:    uuid.New(),
		ActorProfileID: uuid.New(),
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestRespondAccept(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   uuid.New(),
			SupplierID: supplierID,
			Status:     enums.DealStatusDealing,
		},
		transitionRows: 1,
	}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(repo, publisher, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	deal, err := svc.Respond(context.Background(), RespondInput{
		DealID:         dealID,
		Decision:       DealDecisionAccept,
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if deal.Status != enums.DealStatusAccepted {
		t.Fatalf("expected status accepted got %s", deal.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDealAccepted {
		t.Fatalf("expected deal accepted event got %+v", publisher.events)
	}
}

func TestRespondWrongSupplier(t *testing.T) {
	dealID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   uuid.New(),
			SupplierID: uuid.New(),
			Status:     enums.DealStatusDealing,
		},
		transitionRows: 1,
	}
	svc := newTestService(repo, &stubOutboxPublisher{}, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	_, err := svc.Respond(context.Background(), RespondInput{
		DealID:         dealID,
		Decision:       DealDecisionReject,
		ActorUserID:    uuid.New(),
		ActorProfileID: uuid.New(),
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestRespondAlreadyDecided(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   uuid.New(),
			SupplierID: supplierID,
			Status:     enums.DealStatusAccepted,
		},
	}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(repo, publisher, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	_, err := svc.Respond(context.Background(), RespondInput{
		DealID:         dealID,
		Decision:       DealDecisionAccept,
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("unexpected outbox events %+v", publisher.events)
	}
}

func TestCancelSweepsDriverRequests(t *testing.T) {
	dealID := uuid.New()
	sellerID := uuid.New()
	driverID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   sellerID,
			SupplierID: uuid.New(),
			DriverID:   &driverID,
			Status:     enums.DealStatusAssigningDriver,
		},
		transitionRows: 1,
	}
	publisher := &stubOutboxPublisher{}
	sweeper := &stubSweeper{}
	svc := newTestService(repo, publisher, &stubSupplierDirectory{}, &stubProductCatalog{}, sweeper)

	deal, err := svc.Cancel(context.Background(), CancelInput{
		DealID:         dealID,
		Reason:         "supplier unreachable",
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if deal.Status != enums.DealStatusCanceled {
		t.Fatalf("expected status canceled got %s", deal.Status)
	}
	if deal.DriverID != nil {
		t.Fatal("expected driver cleared on cancel")
	}
	if len(sweeper.calls) != 1 || sweeper.calls[0] != dealID {
		t.Fatalf("expected sweeper called for deal got %+v", sweeper.calls)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDealCanceled {
		t.Fatalf("expected deal canceled event got %+v", publisher.events)
	}
}

func TestCancelAfterMaterialization(t *testing.T) {
	dealID := uuid.New()
	sellerID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   sellerID,
			SupplierID: uuid.New(),
			Status:     enums.DealStatusInDelivery,
		},
	}
	sweeper := &stubSweeper{}
	svc := newTestService(repo, &stubOutboxPublisher{}, &stubSupplierDirectory{}, &stubProductCatalog{}, sweeper)

	_, err := svc.Cancel(context.Background(), CancelInput{
		DealID:         dealID,
		ActorUserID:    uuid.New(),
		ActorProfileID: sellerID,
		ActorRole:      enums.UserRoleSeller,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	if len(sweeper.calls) != 0 {
		t.Fatalf("unexpected sweeper calls %+v", sweeper.calls)
	}
}

func TestGetDealAccessControl(t *testing.T) {
	dealID := uuid.New()
	sellerID := uuid.New()
	supplierID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   sellerID,
			SupplierID: supplierID,
			Status:     enums.DealStatusDealing,
		},
	}
	svc := newTestService(repo, &stubOutboxPublisher{}, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	if _, err := svc.Get(context.Background(), dealID, sellerID, enums.UserRoleSeller); err != nil {
		t.Fatalf("seller should read own deal: %v", err)
	}
	_, err := svc.Get(context.Background(), dealID, uuid.New(), enums.UserRoleSeller)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}

func TestGetDealAssignedDriver(t *testing.T) {
	dealID := uuid.New()
	driverID := uuid.New()
	repo := &stubDealsRepo{
		deal: &models.Deal{
			ID:         dealID,
			SellerID:   uuid.New(),
			SupplierID: uuid.New(),
			DriverID:   &driverID,
			Status:     enums.DealStatusAssigningDriver,
		},
	}
	svc := newTestService(repo, &stubOutboxPublisher{}, &stubSupplierDirectory{}, &stubProductCatalog{}, &stubSweeper{})

	if _, err := svc.Get(context.Background(), dealID, driverID, enums.UserRoleDriver); err != nil {
		t.Fatalf("assigned driver should read the deal: %v", err)
	}
	_, err := svc.Get(context.Background(), dealID, uuid.New(), enums.UserRoleDriver)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error got %v", err)
	}
}
