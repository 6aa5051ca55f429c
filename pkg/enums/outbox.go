package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateDeal          OutboxAggregateType = "deal"
	AggregateDelivery      OutboxAggregateType = "delivery"
	AggregateDriverRequest OutboxAggregateType = "driver_request"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDeal,
	AggregateDelivery,
	AggregateDriverRequest,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventDealCreated        OutboxEventType = "deal_created"
	EventDealAccepted       OutboxEventType = "deal_accepted"
	EventDealRejected       OutboxEventType = "deal_rejected"
	EventDealCanceled       OutboxEventType = "deal_canceled"
	EventDealExpired        OutboxEventType = "deal_expired"
	EventDealDriverAssigned OutboxEventType = "deal_driver_assigned"
	EventDriverRequested    OutboxEventType = "driver_requested"
	EventDeliveryCreated    OutboxEventType = "delivery_created"
	EventDeliveryClaimed    OutboxEventType = "delivery_claimed"
	EventDeliveryStarted    OutboxEventType = "delivery_started"
	EventDeliveryCompleted  OutboxEventType = "delivery_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventDealCreated,
	EventDealAccepted,
	EventDealRejected,
	EventDealCanceled,
	EventDealExpired,
	EventDealDriverAssigned,
	EventDriverRequested,
	EventDeliveryCreated,
	EventDeliveryClaimed,
	EventDeliveryStarted,
	EventDeliveryCompleted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
