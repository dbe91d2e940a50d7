package enums

import "fmt"

// LotStatus is the operational state of a material lot. Hold blocks all
// issuance regardless of remaining quantity; depleted is forced when the
// quantity reaches zero.
type LotStatus string

const (
	LotStatusNormal   LotStatus = "normal"
	LotStatusHold     LotStatus = "hold"
	LotStatusDepleted LotStatus = "depleted"
)

var validLotStatuses = []LotStatus{
	LotStatusNormal,
	LotStatusHold,
	LotStatusDepleted,
}

// String implements fmt.Stringer.
func (s LotStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LotStatus.
func (s LotStatus) IsValid() bool {
	for _, candidate := range validLotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLotStatus converts raw input into a LotStatus.
func ParseLotStatus(value string) (LotStatus, error) {
	for _, candidate := range validLotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot status %q", value)
}
