package enums

// ReservationStatus tracks a reservation through its lifecycle.
type ReservationStatus string

const (
	// ReservationStatusReserved is the initial state: capacity is held but
	// the parking session has not started.
	ReservationStatusReserved ReservationStatus = "reserved"
	// ReservationStatusActive means the holder arrived and the session started.
	ReservationStatusActive ReservationStatus = "active"
	// ReservationStatusCompleted means the session ended normally.
	ReservationStatusCompleted ReservationStatus = "completed"
	// ReservationStatusInvalid means the reservation was voided, typically by
	// the grace-period sweeper.
	ReservationStatusInvalid ReservationStatus = "invalid"
)

func (s ReservationStatus) String() string { return string(s) }
