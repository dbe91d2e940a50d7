package enums

import "fmt"

// IssuanceStatus marks an issuance ledger entry. The ledger is append-only:
// canceling flips the status, it never deletes the row.
type IssuanceStatus string

const (
	IssuanceStatusDone     IssuanceStatus = "done"
	IssuanceStatusCanceled IssuanceStatus = "canceled"
)

var validIssuanceStatuses = []IssuanceStatus{
	IssuanceStatusDone,
	IssuanceStatusCanceled,
}

// String implements fmt.Stringer.
func (s IssuanceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IssuanceStatus.
func (s IssuanceStatus) IsValid() bool {
	for _, candidate := range validIssuanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIssuanceStatus converts raw input into an IssuanceStatus.
func ParseIssuanceStatus(value string) (IssuanceStatus, error) {
	for _, candidate := range validIssuanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issuance status %q", value)
}
