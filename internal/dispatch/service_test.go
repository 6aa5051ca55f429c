package dispatch

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

type stubRequestsRepo struct {
	request       *models.DriverRequest
	createErr     error
	resolveRows   int64
	resolveCalls  []map[string]any
	rejectedDeals []uuid.UUID
}

func (s *stubRequestsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRequestsRepo) Create(ctx context.Context, request *models.DriverRequest) (*models.DriverRequest, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	s.request = request
	return request, nil
}

func (s *stubRequestsRepo) FindByID(ctx context.Context, requestID uuid.UUID) (*models.DriverRequest, error) {
	if s.request == nil || s.request.ID != requestID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.request, nil
}

func (s *stubRequestsRepo) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.DriverRequest, error) {
	if s.request == nil || s.request.DealID != dealID {
		return nil, nil
	}
	return []models.DriverRequest{*s.request}, nil
}

func (s *stubRequestsRepo) ListDriverInbox(ctx context.Context, driverID uuid.UUID, params pagination.Params, status *enums.DriverRequestStatus) (*RequestList, error) {
	return &RequestList{}, nil
}

func (s *stubRequestsRepo) Resolve(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error) {
	s.resolveCalls = append(s.resolveCalls, updates)
	return s.resolveRows, nil
}

func (s *stubRequestsRepo) RejectOtherPending(ctx context.Context, dealID, winnerID uuid.UUID) (int64, error) {
	s.rejectedDeals = append(s.rejectedDeals, dealID)
	return 0, nil
}

type stubDealsRepo struct {
	deal           *models.Deal
	transitionRows int64
	assignRows     int64
	assignedDriver uuid.UUID
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
	if s.transitionRows > 0 {
		if v, ok := updates["status"].(enums.DealStatus); ok && s.deal != nil {
			s.deal.Status = v
		}
	}
	return s.transitionRows, nil
}

func (s *stubDealsRepo) FindStaleDealing(ctx context.Context, cutoff time.Time) ([]models.Deal, error) {
	return nil, nil
}

func (s *stubDealsRepo) AssignDriver(ctx context.Context, dealID, driverID uuid.UUID) (int64, error) {
	if s.assignRows > 0 {
		s.assignedDriver = driverID
	}
	return s.assignRows, nil
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

func TestRequestDriverMovesDealToAssignment(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	driverID := uuid.New()
	dealsRepo := &stubDealsRepo{
		deal: &models.Deal{
			ID:               dealID,
			SellerID:         uuid.New(),
			SupplierID:       supplierID,
			Status:           enums.DealStatusAccepted,
			DeliveryHandling: enums.DeliveryHandlingSystemDriver,
		},
		transitionRows: 1,
	}
	repo := &stubRequestsRepo{}
	publisher := &stubOutboxPublisher{}
	drivers := &stubDrivers{driver: &models.DriverProfile{ID: driverID, IsAvailable: true}}
	svc, err := NewService(repo, dealsRepo, stubTxRunner{}, publisher, drivers)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	request, err := svc.RequestDriver(context.Background(), RequestDriverInput{
		DealID:         dealID,
		DriverID:       driverID,
		RequestedPrice: decimal.NewFromInt(300),
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if request.Status != enums.DriverRequestStatusPending {
		t.Fatalf("expected pending request got %s", request.Status)
	}
	if dealsRepo.deal.Status != enums.DealStatusAssigningDriver {
		t.Fatalf("expected deal assigning_driver got %s", dealsRepo.deal.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDriverRequested {
		t.Fatalf("expected driver requested event got %+v", publisher.events)
	}
}

func TestRequestDriverDuplicate(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	driverID := uuid.New()
	dealsRepo := &stubDealsRepo{
		deal: &models.Deal{
			ID:               dealID,
			SupplierID:       supplierID,
			Status:           enums.DealStatusAssigningDriver,
			DeliveryHandling: enums.DeliveryHandlingSystemDriver,
		},
	}
	repo := &stubRequestsRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "uq_driver_requests_deal_driver"`),
	}
	drivers := &stubDrivers{driver: &models.DriverProfile{ID: driverID, IsAvailable: true}}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, drivers)

	_, err := svc.RequestDriver(context.Background(), RequestDriverInput{
		DealID:         dealID,
		DriverID:       driverID,
		RequestedPrice: decimal.NewFromInt(250),
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestRequestDriverRejectedDeal(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	dealsRepo := &stubDealsRepo{
		deal: &models.Deal{
			ID:               dealID,
			SupplierID:       supplierID,
			Status:           enums.DealStatusRejected,
			DeliveryHandling: enums.DeliveryHandlingSystemDriver,
		},
	}
	svc, _ := NewService(&stubRequestsRepo{}, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.RequestDriver(context.Background(), RequestDriverInput{
		DealID:         dealID,
		DriverID:       uuid.New(),
		RequestedPrice: decimal.NewFromInt(100),
		ActorUserID:    uuid.New(),
		ActorProfileID: supplierID,
		ActorRole:      enums.UserRoleSupplier,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestDriverAcceptAssignsDeal(t *testing.T) {
	dealID := uuid.New()
	driverID := uuid.New()
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.DriverRequest{
			ID:             requestID,
			DealID:         dealID,
			DriverID:       driverID,
			Status:         enums.DriverRequestStatusPending,
			RequestedPrice: decimal.NewFromInt(300),
		},
		resolveRows: 1,
	}
	dealsRepo := &stubDealsRepo{assignRows: 1}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	proposed := decimal.NewFromInt(350)
	request, err := svc.Respond(context.Background(), RespondInput{
		RequestID:      requestID,
		Decision:       RequestDecisionAccept,
		ProposedPrice:  &proposed,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if request.Status != enums.DriverRequestStatusAccepted {
		t.Fatalf("expected accepted request got %s", request.Status)
	}
	if request.FinalPrice == nil || !request.FinalPrice.Equal(proposed) {
		t.Fatalf("expected final price from proposal got %v", request.FinalPrice)
	}
	if dealsRepo.assignedDriver != driverID {
		t.Fatalf("expected deal assigned to driver got %s", dealsRepo.assignedDriver)
	}
	if len(repo.rejectedDeals) != 1 || repo.rejectedDeals[0] != dealID {
		t.Fatalf("expected competing requests rejected got %+v", repo.rejectedDeals)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventDealDriverAssigned {
		t.Fatalf("expected driver assigned event got %+v", publisher.events)
	}
}

func TestDriverAcceptLosesRace(t *testing.T) {
	dealID := uuid.New()
	driverID := uuid.New()
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.DriverRequest{
			ID:             requestID,
			DealID:         dealID,
			DriverID:       driverID,
			Status:         enums.DriverRequestStatusPending,
			RequestedPrice: decimal.NewFromInt(300),
		},
		resolveRows: 1,
	}
	// Another driver already won the conditional deal update.
	dealsRepo := &stubDealsRepo{assignRows: 0}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	_, err := svc.Respond(context.Background(), RespondInput{
		RequestID:      requestID,
		Decision:       RequestDecisionAccept,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("unexpected outbox events %+v", publisher.events)
	}
}

func TestDriverReject(t *testing.T) {
	driverID := uuid.New()
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.DriverRequest{
			ID:             requestID,
			DealID:         uuid.New(),
			DriverID:       driverID,
			Status:         enums.DriverRequestStatusPending,
			RequestedPrice: decimal.NewFromInt(200),
		},
		resolveRows: 1,
	}
	dealsRepo := &stubDealsRepo{}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, publisher, &stubDrivers{})

	request, err := svc.Respond(context.Background(), RespondInput{
		RequestID:      requestID,
		Decision:       RequestDecisionReject,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if request.Status != enums.DriverRequestStatusRejected {
		t.Fatalf("expected rejected request got %s", request.Status)
	}
	if dealsRepo.assignedDriver != uuid.Nil {
		t.Fatal("reject must not assign the deal")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("unexpected outbox events %+v", publisher.events)
	}
}

func TestRespondResolvedRequest(t *testing.T) {
	dealID := uuid.New()
	driverID := uuid.New()
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.DriverRequest{
			ID:       requestID,
			DealID:   dealID,
			DriverID: driverID,
			Status:   enums.DriverRequestStatusRejected,
		},
	}
	// The deal never got a driver: the driver is replaying a stale request.
	dealsRepo := &stubDealsRepo{deal: &models.Deal{ID: dealID}}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Respond(context.Background(), RespondInput{
		RequestID:      requestID,
		Decision:       RequestDecisionAccept,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestDriverAcceptAfterAutoReject(t *testing.T) {
	dealID := uuid.New()
	driverID := uuid.New()
	winnerID := uuid.New()
	requestID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.DriverRequest{
			ID:       requestID,
			DealID:   dealID,
			DriverID: driverID,
			Status:   enums.DriverRequestStatusRejected,
		},
	}
	// Another driver's accept already landed and auto-rejected this request.
	dealsRepo := &stubDealsRepo{deal: &models.Deal{
		ID:       dealID,
		DriverID: &winnerID,
		Status:   enums.DealStatusAssigningDriver,
	}}
	svc, _ := NewService(repo, dealsRepo, stubTxRunner{}, &stubOutboxPublisher{}, &stubDrivers{})

	_, err := svc.Respond(context.Background(), RespondInput{
		RequestID:      requestID,
		Decision:       RequestDecisionAccept,
		ActorUserID:    uuid.New(),
		ActorProfileID: driverID,
		ActorRole:      enums.UserRoleDriver,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}
