package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/loadbridge-backend/pkg/db/models"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox"
	"github.com/angelmondragon/loadbridge-backend/pkg/outbox/idempotency"
	"github.com/google/uuid"
)

const dealNotificationConsumer = "deal-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns deal lifecycle transitions into
// in-app notifications for the affected profiles.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a deal notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, dealNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, dealNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventDealCreated:
		return c.notifyDealCreated(ctx, data, logCtx)
	case enums.EventDealAccepted, enums.EventDealRejected:
		return c.notifyDealDecision(ctx, eventType, data, logCtx)
	case enums.EventDealCanceled:
		return c.notifyDealCanceled(ctx, data, logCtx)
	case enums.EventDriverRequested:
		return c.notifyDriverRequested(ctx, data, logCtx)
	case enums.EventDealDriverAssigned:
		return c.notifyDriverAssigned(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

type dealCreatedPayload struct {
	DealID     uuid.UUID `json:"deal_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	ItemCount  int       `json:"item_count"`
}

func (c *Consumer) notifyDealCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload dealCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse deal_created payload: %w", err)
	}
	if payload.SupplierID == uuid.Nil {
		return fmt.Errorf("supplier id missing")
	}
	link := fmt.Sprintf("/deals/%s", payload.DealID)
	notification := &models.Notification{
		ProfileID: payload.SupplierID,
		Type:      enums.NotificationTypeDealAlert,
		Title:     "New deal proposed",
		Message:   fmt.Sprintf("A seller proposed a deal with %d items. Review and respond.", payload.ItemCount),
		Link:      stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "supplier notified of new deal")
	return nil
}

type dealDecisionPayload struct {
	DealID   uuid.UUID        `json:"deal_id"`
	SellerID uuid.UUID        `json:"seller_id"`
	Status   enums.DealStatus `json:"status"`
}

func (c *Consumer) notifyDealDecision(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	var payload dealDecisionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse deal decision payload: %w", err)
	}
	if payload.SellerID == uuid.Nil {
		return fmt.Errorf("seller id missing")
	}
	title := "Deal accepted"
	message := "Your deal was accepted by the supplier."
	if eventType == enums.EventDealRejected {
		title = "Deal rejected"
		message = "Your deal was rejected by the supplier."
	}
	notification := &models.Notification{
		ProfileID: payload.SellerID,
		Type:      enums.NotificationTypeDealAlert,
		Title:     title,
		Message:   message,
		Link:      stringPtr(fmt.Sprintf("/deals/%s", payload.DealID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "seller notified of deal decision")
	return nil
}

type dealCanceledPayload struct {
	DealID     uuid.UUID `json:"deal_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Reason     string    `json:"reason,omitempty"`
}

func (c *Consumer) notifyDealCanceled(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload dealCanceledPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse deal_canceled payload: %w", err)
	}
	if payload.SupplierID == uuid.Nil {
		return fmt.Errorf("supplier id missing")
	}
	message := "The seller canceled the deal."
	if payload.Reason != "" {
		message = fmt.Sprintf("The seller canceled the deal. Reason: %s", payload.Reason)
	}
	notification := &models.Notification{
		ProfileID: payload.SupplierID,
		Type:      enums.NotificationTypeDealAlert,
		Title:     "Deal canceled",
		Message:   message,
		Link:      stringPtr(fmt.Sprintf("/deals/%s", payload.DealID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "supplier notified of cancellation")
	return nil
}

type driverRequestedPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	DealID    uuid.UUID `json:"deal_id"`
	DriverID  uuid.UUID `json:"driver_id"`
}

func (c *Consumer) notifyDriverRequested(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload driverRequestedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse driver_requested payload: %w", err)
	}
	if payload.DriverID == uuid.Nil {
		return fmt.Errorf("driver id missing")
	}
	notification := &models.Notification{
		ProfileID: payload.DriverID,
		Type:      enums.NotificationTypeDriverAlert,
		Title:     "New delivery request",
		Message:   "A deal party requested you as the driver. Accept or reject from your inbox.",
		Link:      stringPtr("/driver/requests"),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "driver notified of request")
	return nil
}

type driverAssignedPayload struct {
	DealID   uuid.UUID `json:"deal_id"`
	DriverID uuid.UUID `json:"driver_id"`
}

func (c *Consumer) notifyDriverAssigned(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload driverAssignedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse deal_driver_assigned payload: %w", err)
	}
	if payload.DriverID == uuid.Nil {
		return fmt.Errorf("driver id missing")
	}
	notification := &models.Notification{
		ProfileID: payload.DriverID,
		Type:      enums.NotificationTypeDriverAlert,
		Title:     "Assignment confirmed",
		Message:   "You are the assigned driver for an upcoming delivery.",
		Link:      stringPtr(fmt.Sprintf("/deals/%s", payload.DealID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "driver notified of assignment")
	return nil
}

func stringPtr(value string) *string {
	return &value
}
