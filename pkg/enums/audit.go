package enums

// AuditEventType identifies the kind of state change an audit row records.
type AuditEventType string

const (
	EventReservationExpired AuditEventType = "reservation.expired"
	EventReservationCreated AuditEventType = "reservation.created"
	EventSessionStarted     AuditEventType = "reservation.session_started"
)

// AuditAggregateType names the entity an audit event is about.
type AuditAggregateType string

const (
	AggregateReservation AuditAggregateType = "reservation"
	AggregateSection     AuditAggregateType = "parking_section"
)
