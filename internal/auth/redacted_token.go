package auth

import "analytics-mcp/pkg/logging"

const redactionMarker = "[REDACTED]"

// RedactedToken holds a bearer token while keeping it out of logs and
// serialized output. Every formatting surface renders a redaction marker;
// the raw value is only reachable through Value, and Masked produces the
// suffix form used in log lines.
type RedactedToken string

// NewRedactedToken wraps a raw token value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken(value)
}

// Value returns the raw token for outbound Authorization headers. Never
// log the result.
func (t RedactedToken) Value() string {
	return string(t)
}

// IsEmpty reports whether no token is present.
func (t RedactedToken) IsEmpty() bool {
	return t == ""
}

// Masked returns the loggable form of the token: a few trailing characters
// for correlation, everything else elided.
func (t RedactedToken) Masked() string {
	return logging.MaskToken(string(t))
}

func (t RedactedToken) String() string {
	return redactionMarker
}

func (t RedactedToken) GoString() string {
	return "auth.RedactedToken(" + redactionMarker + ")"
}

func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactionMarker + `"`), nil
}
