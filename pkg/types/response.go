// Package types holds the JSON envelopes every handler writes.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a typed error. Details carries the
// machine-readable context (lot_no, requested, available, current, required)
// when the code allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
