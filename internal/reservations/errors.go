package reservations

import "errors"

var (
	// ErrSpotUnavailable is returned when the requested spot is already
	// reserved or occupied.
	ErrSpotUnavailable = errors.New("spot unavailable")
	// ErrSectionFull is returned when a section has no free capacity for a
	// new hold.
	ErrSectionFull = errors.New("section full")
	// ErrNotReserved is returned when a session is started on a
	// reservation that is not in the reserved state.
	ErrNotReserved = errors.New("reservation not in reserved state")
)
