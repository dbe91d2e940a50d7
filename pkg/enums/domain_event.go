package enums

// DomainEventType names an append-only domain event row.
type DomainEventType string

const (
	DomainEventOrderCreated     DomainEventType = "order.created"
	DomainEventOrderStarted     DomainEventType = "order.started"
	DomainEventOrderPaused      DomainEventType = "order.paused"
	DomainEventOrderCompleted   DomainEventType = "order.completed"
	DomainEventOrderCanceled    DomainEventType = "order.canceled"
	DomainEventOrderOverridden  DomainEventType = "order.status_overridden"
	DomainEventIssuanceCreated  DomainEventType = "issuance.created"
	DomainEventIssuanceCanceled DomainEventType = "issuance.canceled"
)

// DomainAggregateType names the aggregate an event belongs to.
type DomainAggregateType string

const (
	DomainAggregateOrder    DomainAggregateType = "order"
	DomainAggregateIssuance DomainAggregateType = "issuance"
)
