package enums

import "fmt"

// ProductionResultStatus marks a reported production result. Canceled rows
// are excluded from completion aggregation.
type ProductionResultStatus string

const (
	ProductionResultStatusDone     ProductionResultStatus = "done"
	ProductionResultStatusCanceled ProductionResultStatus = "canceled"
)

var validProductionResultStatuses = []ProductionResultStatus{
	ProductionResultStatusDone,
	ProductionResultStatusCanceled,
}

// String implements fmt.Stringer.
func (s ProductionResultStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductionResultStatus.
func (s ProductionResultStatus) IsValid() bool {
	for _, candidate := range validProductionResultStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductionResultStatus converts raw input into a ProductionResultStatus.
func ParseProductionResultStatus(value string) (ProductionResultStatus, error) {
	for _, candidate := range validProductionResultStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid production result status %q", value)
}
