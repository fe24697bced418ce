package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestRedactedTokenNeverFormatsRawValue(t *testing.T) {
	token := NewRedactedToken("ya29.a0-very-secret-access-token")

	for _, rendered := range []string{
		fmt.Sprintf("%s", token),
		fmt.Sprintf("%v", token),
		fmt.Sprintf("%#v", token),
		fmt.Sprintf("%+v", token),
	} {
		if strings.Contains(rendered, "secret") {
			t.Errorf("Token value leaked into formatted output %q", rendered)
		}
		if !strings.Contains(rendered, redactionMarker) {
			t.Errorf("Expected redaction marker in %q", rendered)
		}
	}
}

func TestRedactedTokenValueRoundTrip(t *testing.T) {
	token := NewRedactedToken("tok-12345678")

	if token.Value() != "tok-12345678" {
		t.Errorf("Value() = %q, expected the raw token", token.Value())
	}
	if token.IsEmpty() {
		t.Error("Expected non-empty token")
	}
	if !NewRedactedToken("").IsEmpty() {
		t.Error("Expected empty token to report IsEmpty")
	}
}

func TestRedactedTokenMasked(t *testing.T) {
	if got := NewRedactedToken("ya29.token-abcd").Masked(); got != "***abcd" {
		t.Errorf("Masked() = %q, expected suffix form", got)
	}
	if got := NewRedactedToken("short").Masked(); got != "***" {
		t.Errorf("Masked() = %q for a short token, expected full elision", got)
	}
	if got := NewRedactedToken("").Masked(); got != "" {
		t.Errorf("Masked() = %q for an empty token, expected empty", got)
	}
}

func TestRedactedTokenJSON(t *testing.T) {
	payload := struct {
		Token RedactedToken `json:"token"`
	}{Token: NewRedactedToken("secret-value")}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != `{"token":"[REDACTED]"}` {
		t.Errorf("Marshaled %s, expected the redaction marker", data)
	}
}
