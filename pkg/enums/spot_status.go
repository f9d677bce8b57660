package enums

// SpotStatus tracks the state of an individually numbered parking spot.
type SpotStatus string

const (
	SpotStatusAvailable SpotStatus = "available"
	SpotStatusReserved  SpotStatus = "reserved"
	SpotStatusOccupied  SpotStatus = "occupied"
)

func (s SpotStatus) String() string { return string(s) }
