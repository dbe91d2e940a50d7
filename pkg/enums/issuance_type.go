package enums

import "fmt"

// IssuanceType records how an issuance was initiated.
type IssuanceType string

const (
	IssuanceTypeProduction IssuanceType = "production"
	IssuanceTypeScan       IssuanceType = "scan"
	IssuanceTypeManual     IssuanceType = "manual"
)

var validIssuanceTypes = []IssuanceType{
	IssuanceTypeProduction,
	IssuanceTypeScan,
	IssuanceTypeManual,
}

// String implements fmt.Stringer.
func (t IssuanceType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known IssuanceType.
func (t IssuanceType) IsValid() bool {
	for _, candidate := range validIssuanceTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseIssuanceType converts raw input into an IssuanceType.
func ParseIssuanceType(value string) (IssuanceType, error) {
	for _, candidate := range validIssuanceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issuance type %q", value)
}
