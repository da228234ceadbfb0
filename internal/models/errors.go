package models

// RelayError is the body the proxy writes for every failure.
type RelayError struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details string `json:"details,omitempty"`
}
