package dispatch

import (
	"context"
	"fmt"

	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/pkg/db"
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

type driverDirectory interface {
	FindDriverByID(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error)
}

// Service negotiates deliveries between deals and drivers.
type Service interface {
	RequestDriver(ctx context.Context, input RequestDriverInput) (*models.DriverRequest, error)
	Respond(ctx context.Context, input RespondInput) (*models.DriverRequest, error)
	ListDealRequests(ctx context.Context, dealID, actorProfileID uuid.UUID, actorRole enums.UserRole) ([]RequestSummary, error)
	ListInbox(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DriverRequestStatus) (*RequestList, error)
}

// RequestDecision is the answer a driver gives to a delivery offer.
type RequestDecision string

const (
	RequestDecisionAccept RequestDecision = "accept"
	RequestDecisionReject RequestDecision = "reject"
)

// RequestDriverInput captures a deal party soliciting a specific driver.
type RequestDriverInput struct {
	DealID         uuid.UUID
	DriverID       uuid.UUID
	RequestedPrice decimal.Decimal
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// RespondInput captures a driver's answer to a delivery offer.
type RespondInput struct {
	RequestID      uuid.UUID
	Decision       RequestDecision
	ProposedPrice  *decimal.Decimal
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
}

// DriverRequestedEvent tells downstream systems a driver was asked to haul a deal.
type DriverRequestedEvent struct {
	RequestID      uuid.UUID       `json:"request_id"`
	DealID         uuid.UUID       `json:"deal_id"`
	DriverID       uuid.UUID       `json:"driver_id"`
	RequestedPrice decimal.Decimal `json:"requested_price"`
}

// DealDriverAssignedEvent is emitted when a driver request wins the assignment.
type DealDriverAssignedEvent struct {
	DealID     uuid.UUID        `json:"deal_id"`
	RequestID  uuid.UUID        `json:"request_id"`
	DriverID   uuid.UUID        `json:"driver_id"`
	FinalPrice *decimal.Decimal `json:"final_price,omitempty"`
}

type service struct {
	repo    Repository
	dealsRp deals.Repository
	tx      txRunner
	outbox  outboxPublisher
	drivers driverDirectory
}

// NewService builds a dispatch service with the required dependencies.
func NewService(repo Repository, dealsRepo deals.Repository, tx txRunner, outboxSvc outboxPublisher, drivers driverDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("driver request repository required")
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
	}, nil
}

// requestableStatuses are the deal states that still admit new driver offers.
var requestableStatuses = []enums.DealStatus{
	enums.DealStatusAccepted,
	enums.DealStatusAssigningDriver,
}

func (s *service) RequestDriver(ctx context.Context, input RequestDriverInput) (*models.DriverRequest, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	if input.ActorRole != enums.UserRoleSupplier && input.ActorRole != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only deal parties can request a driver")
	}
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	if input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	if !input.RequestedPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested price must be positive")
	}

	var created *models.DriverRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dealsRepo := s.dealsRp.WithTx(tx)

		deal, err := dealsRepo.FindDealByID(ctx, input.DealID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if !isDealParty(deal, input.ActorProfileID, input.ActorRole) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
		}
		if deal.DeliveryHandling != enums.DeliveryHandlingSystemDriver {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal does not use platform drivers")
		}
		if !isRequestable(deal.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal is not accepting driver requests")
		}
		if deal.DriverID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal already has a driver")
		}

		driver, err := s.drivers.FindDriverByID(ctx, input.DriverID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		if !driver.IsAvailable {
			return pkgerrors.New(pkgerrors.CodeValidation, "driver is not available")
		}

		// First offer moves the deal into driver assignment.
		if deal.Status == enums.DealStatusAccepted {
			rows, err := dealsRepo.TransitionStatus(ctx, deal.ID,
				[]enums.DealStatus{enums.DealStatusAccepted},
				map[string]any{"status": enums.DealStatusAssigningDriver})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "deal changed concurrently")
			}
			deal.Status = enums.DealStatusAssigningDriver
		}

		request := &models.DriverRequest{
			DealID:         deal.ID,
			DriverID:       driver.ID,
			Status:         enums.DriverRequestStatusPending,
			RequestedPrice: input.RequestedPrice,
		}
		if _, err := repo.Create(ctx, request); err != nil {
			if db.IsUniqueViolation(err, "uq_driver_requests_deal_driver") {
				return pkgerrors.New(pkgerrors.CodeConflict, "driver was already requested for this deal")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver request")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDriverRequested,
			AggregateType: enums.AggregateDriverRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DriverRequestedEvent{
				RequestID:      request.ID,
				DealID:         deal.ID,
				DriverID:       driver.ID,
				RequestedPrice: request.RequestedPrice,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*models.DriverRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleDriver || input.ActorProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requested driver can respond")
	}
	if input.Decision != RequestDecisionAccept && input.Decision != RequestDecisionReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}
	if input.ProposedPrice != nil && !input.ProposedPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proposed price must be positive")
	}

	var updated *models.DriverRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dealsRepo := s.dealsRp.WithTx(tx)

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver request")
		}
		if request.DriverID != input.ActorProfileID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this request does not belong to you")
		}
		if request.Status != enums.DriverRequestStatusPending {
			// A request auto-rejected because another driver already won the
			// deal is a lost race, not a stale client.
			if input.Decision == RequestDecisionAccept {
				deal, err := dealsRepo.FindDealByID(ctx, request.DealID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
				}
				if deal.DriverID != nil && *deal.DriverID != request.DriverID {
					return pkgerrors.New(pkgerrors.CodeConflict, "deal was already assigned to another driver")
				}
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request was already resolved")
		}

		if input.Decision == RequestDecisionReject {
			rows, err := repo.Resolve(ctx, request.ID, map[string]any{
				"status": enums.DriverRequestStatusRejected,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject driver request")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "request changed concurrently")
			}
			request.Status = enums.DriverRequestStatusRejected
			updated = request
			return nil
		}

		finalPrice := request.RequestedPrice
		if input.ProposedPrice != nil {
			finalPrice = *input.ProposedPrice
		}
		resolveUpdates := map[string]any{
			"status":      enums.DriverRequestStatusAccepted,
			"final_price": finalPrice,
		}
		if input.ProposedPrice != nil {
			resolveUpdates["driver_proposed_price"] = *input.ProposedPrice
		}
		rows, err := repo.Resolve(ctx, request.ID, resolveUpdates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept driver request")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "request changed concurrently")
		}

		// Claim the deal. Losing a concurrent accept surfaces as a conflict,
		// never a silent overwrite.
		rows, err = dealsRepo.AssignDriver(ctx, request.DealID, request.DriverID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign driver to deal")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "deal was already assigned to another driver")
		}

		if _, err := repo.RejectOtherPending(ctx, request.DealID, request.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject competing requests")
		}

		request.Status = enums.DriverRequestStatusAccepted
		request.DriverProposedPrice = input.ProposedPrice
		request.FinalPrice = &finalPrice

		event := outbox.DomainEvent{
			EventType:     enums.EventDealDriverAssigned,
			AggregateType: enums.AggregateDeal,
			AggregateID:   request.DealID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorProfileID, input.ActorRole),
			Data: DealDriverAssignedEvent{
				DealID:     request.DealID,
				RequestID:  request.ID,
				DriverID:   request.DriverID,
				FinalPrice: request.FinalPrice,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListDealRequests(ctx context.Context, dealID, actorProfileID uuid.UUID, actorRole enums.UserRole) ([]RequestSummary, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}

	deal, err := s.dealsRp.FindDealByID(ctx, dealID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if !isDealParty(deal, actorProfileID, actorRole) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this deal does not belong to you")
	}

	requests, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver requests")
	}
	summaries := make([]RequestSummary, 0, len(requests))
	for _, request := range requests {
		summaries = append(summaries, summarize(request))
	}
	return summaries, nil
}

func (s *service) ListInbox(ctx context.Context, driverProfileID uuid.UUID, params pagination.Params, status *enums.DriverRequestStatus) (*RequestList, error) {
	if driverProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	list, err := s.repo.ListDriverInbox(ctx, driverProfileID, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver inbox")
	}
	return list, nil
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

func isRequestable(status enums.DealStatus) bool {
	for _, candidate := range requestableStatuses {
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
