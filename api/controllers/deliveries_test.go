package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/internal/deliveries"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
)

type stubDeliveryService struct {
	materializeFn   func(ctx context.Context, input deliveries.MaterializeInput) (*models.Delivery, error)
	claimFn         func(ctx context.Context, input deliveries.ClaimInput) (*models.Delivery, error)
	startFn         func(ctx context.Context, input deliveries.TransitInput) (*models.Delivery, error)
	completeFn      func(ctx context.Context, input deliveries.TransitInput) (*models.Delivery, error)
	getFn           func(ctx context.Context, deliveryID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Delivery, error)
	listForDriverFn func(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*deliveries.DeliveryList, error)
	listAvailableFn func(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params) ([]deliveries.OpenDelivery, error)
}

func (s *stubDeliveryService) Materialize(ctx context.Context, input deliveries.MaterializeInput) (*models.Delivery, error) {
	if s.materializeFn != nil {
		return s.materializeFn(ctx, input)
	}
	return nil, fmt.Errorf("unexpected Materialize call")
}

func (s *stubDeliveryService) Claim(ctx context.Context, input deliveries.ClaimInput) (*models.Delivery, error) {
	if s.claimFn != nil {
		return s.claimFn(ctx, input)
	}
	return nil, fmt.Errorf("unexpected Claim call")
}

func (s *stubDeliveryService) Start(ctx context.Context, input deliveries.TransitInput) (*models.Delivery, error) {
	if s.startFn != nil {
		return s.startFn(ctx, input)
	}
	return nil, fmt.Errorf("unexpected Start call")
}

func (s *stubDeliveryService) Complete(ctx context.Context, input deliveries.TransitInput) (*models.Delivery, error) {
	if s.completeFn != nil {
		return s.completeFn(ctx, input)
	}
	return nil, fmt.Errorf("unexpected Complete call")
}

func (s *stubDeliveryService) Get(ctx context.Context, deliveryID, actorProfileID uuid.UUID, actorRole enums.UserRole) (*models.Delivery, error) {
	if s.getFn != nil {
		return s.getFn(ctx, deliveryID, actorProfileID, actorRole)
	}
	return nil, fmt.Errorf("unexpected Get call")
}

func (s *stubDeliveryService) ListForDriver(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*deliveries.DeliveryList, error) {
	if s.listForDriverFn != nil {
		return s.listForDriverFn(ctx, driverProfileID, params, status)
	}
	return nil, fmt.Errorf("unexpected ListForDriver call")
}

func (s *stubDeliveryService) ListAvailable(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params) ([]deliveries.OpenDelivery, error) {
	if s.listAvailableFn != nil {
		return s.listAvailableFn(ctx, driverProfileID, params)
	}
	return nil, fmt.Errorf("unexpected ListAvailable call")
}

func TestMaterializeDeliverySuccess(t *testing.T) {
	dealID := uuid.New()
	supplierID := uuid.New()
	svc := &stubDeliveryService{
		materializeFn: func(ctx context.Context, input deliveries.MaterializeInput) (*models.Delivery, error) {
			if input.DealID != dealID {
				t.Fatalf("unexpected deal %s", input.DealID)
			}
			if input.Address != "Av. Reforma 100, CDMX" {
				t.Fatalf("unexpected address %q", input.Address)
			}
			return &models.Delivery{ID: uuid.New(), DealID: dealID, Status: enums.DeliveryStatusReady}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+dealID.String()+"/delivery", bytes.NewReader([]byte(`{"address":"Av. Reforma 100, CDMX"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), supplierID, enums.UserRoleSupplier)
	req = addRouteParam(req, "dealId", dealID.String())

	resp := httptest.NewRecorder()
	MaterializeDelivery(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestMaterializeDeliveryShortAddress(t *testing.T) {
	dealID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+dealID.String()+"/delivery", bytes.NewReader([]byte(`{"address":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), uuid.New(), enums.UserRoleSupplier)
	req = addRouteParam(req, "dealId", dealID.String())

	resp := httptest.NewRecorder()
	MaterializeDelivery(&stubDeliveryService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptDeliveryForwardsClaim(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	svc := &stubDeliveryService{
		claimFn: func(ctx context.Context, input deliveries.ClaimInput) (*models.Delivery, error) {
			if input.DeliveryID != deliveryID {
				t.Fatalf("unexpected delivery %s", input.DeliveryID)
			}
			if input.ActorProfileID != driverID || input.ActorRole != enums.UserRoleDriver {
				t.Fatalf("actor not forwarded: %+v", input)
			}
			claimed := driverID
			return &models.Delivery{ID: deliveryID, DriverID: &claimed, Status: enums.DeliveryStatusScheduled}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/accept", nil)
	req = withActor(req, uuid.New(), driverID, enums.UserRoleDriver)
	req = addRouteParam(req, "deliveryId", deliveryID.String())

	resp := httptest.NewRecorder()
	AcceptDelivery(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestAcceptDeliveryAlreadyClaimed(t *testing.T) {
	deliveryID := uuid.New()
	svc := &stubDeliveryService{
		claimFn: func(ctx context.Context, input deliveries.ClaimInput) (*models.Delivery, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already claimed")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/accept", nil)
	req = withActor(req, uuid.New(), uuid.New(), enums.UserRoleDriver)
	req = addRouteParam(req, "deliveryId", deliveryID.String())

	resp := httptest.NewRecorder()
	AcceptDelivery(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestStartDeliveryInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/nope/start", nil)
	req = withActor(req, uuid.New(), uuid.New(), enums.UserRoleDriver)
	req = addRouteParam(req, "deliveryId", "nope")

	resp := httptest.NewRecorder()
	StartDelivery(&stubDeliveryService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCompleteDeliveryForwards(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	svc := &stubDeliveryService{
		completeFn: func(ctx context.Context, input deliveries.TransitInput) (*models.Delivery, error) {
			if input.DeliveryID != deliveryID || input.ActorProfileID != driverID {
				t.Fatalf("input not forwarded: %+v", input)
			}
			return &models.Delivery{ID: deliveryID, Status: enums.DeliveryStatusDelivered}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/complete", nil)
	req = withActor(req, uuid.New(), driverID, enums.UserRoleDriver)
	req = addRouteParam(req, "deliveryId", deliveryID.String())

	resp := httptest.NewRecorder()
	CompleteDelivery(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestListDriverDeliveriesParsesStatus(t *testing.T) {
	driverID := uuid.New()
	svc := &stubDeliveryService{
		listForDriverFn: func(ctx context.Context, profileID uuid.UUID, params pagination.Params, status *enums.DeliveryStatus) (*deliveries.DeliveryList, error) {
			if profileID != driverID {
				t.Fatalf("unexpected profile %s", profileID)
			}
			if status == nil || *status != enums.DeliveryStatusInTransit {
				t.Fatalf("status filter not parsed: %v", status)
			}
			return &deliveries.DeliveryList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries?status=in_transit", nil)
	req = withActor(req, uuid.New(), driverID, enums.UserRoleDriver)

	resp := httptest.NewRecorder()
	ListDriverDeliveries(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestListAvailableDeliveries(t *testing.T) {
	driverID := uuid.New()
	svc := &stubDeliveryService{
		listAvailableFn: func(ctx context.Context, profileID uuid.UUID, params pagination.Params) ([]deliveries.OpenDelivery, error) {
			if profileID != driverID {
				t.Fatalf("unexpected profile %s", profileID)
			}
			return []deliveries.OpenDelivery{{ID: uuid.New()}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deliveries/available", nil)
	req = withActor(req, uuid.New(), driverID, enums.UserRoleDriver)

	resp := httptest.NewRecorder()
	ListAvailableDeliveries(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
}
