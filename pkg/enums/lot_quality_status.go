package enums

import "fmt"

// LotQualityStatus reflects the incoming-quality gate of a material lot.
// Only lots that passed the gate may be issued.
type LotQualityStatus string

const (
	LotQualityStatusPass    LotQualityStatus = "pass"
	LotQualityStatusPending LotQualityStatus = "pending"
	LotQualityStatusFail    LotQualityStatus = "fail"
)

var validLotQualityStatuses = []LotQualityStatus{
	LotQualityStatusPass,
	LotQualityStatusPending,
	LotQualityStatusFail,
}

// String implements fmt.Stringer.
func (s LotQualityStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LotQualityStatus.
func (s LotQualityStatus) IsValid() bool {
	for _, candidate := range validLotQualityStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLotQualityStatus converts raw input into a LotQualityStatus.
func ParseLotQualityStatus(value string) (LotQualityStatus, error) {
	for _, candidate := range validLotQualityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lot quality status %q", value)
}
