package tools

import (
	"context"
	"strings"
	"testing"

	"analytics-mcp/internal/auth"

	"github.com/mark3labs/mcp-go/server"
)

func TestRequirePropertyFromArgument(t *testing.T) {
	req := callRequest("x", map[string]any{"property_id": "123456"})

	property, errResult := requireProperty(context.Background(), req)
	if errResult != nil {
		t.Fatalf("Expected property to resolve, got %s", resultText(t, errResult))
	}
	if property != "properties/123456" {
		t.Errorf("Expected normalized property name, got %q", property)
	}
}

func TestRequirePropertyFromHeader(t *testing.T) {
	ac := auth.NewAuthContext()
	ac.PropertyID = "654321"
	ctx := auth.WithAuthContext(context.Background(), ac)

	property, errResult := requireProperty(ctx, callRequest("x", nil))
	if errResult != nil {
		t.Fatalf("Expected property to resolve from header, got %s", resultText(t, errResult))
	}
	if property != "properties/654321" {
		t.Errorf("Expected normalized property name, got %q", property)
	}
}

func TestRequirePropertyArgumentWinsOverHeader(t *testing.T) {
	ac := auth.NewAuthContext()
	ac.PropertyID = "654321"
	ctx := auth.WithAuthContext(context.Background(), ac)

	property, _ := requireProperty(ctx, callRequest("x", map[string]any{"property_id": "123456"}))
	if property != "properties/123456" {
		t.Errorf("Expected argument to take precedence, got %q", property)
	}
}

func TestRequirePropertyMissing(t *testing.T) {
	_, errResult := requireProperty(context.Background(), callRequest("x", nil))
	if errResult == nil {
		t.Fatal("Expected error result when no property is supplied")
	}
	if !strings.Contains(resultText(t, errResult), "property_id") {
		t.Errorf("Expected error to mention property_id, got %q", resultText(t, errResult))
	}
}

func TestRegisterAddsAllTools(t *testing.T) {
	inj, _, _ := newTestInjector(t)
	s := server.NewMCPServer("test", "0.0.0")

	Register(s, inj)

	defs := append(inj.AdminTools(), inj.ReportingTools()...)
	names := map[string]bool{}
	for _, def := range defs {
		names[def.Tool.Name] = true
	}

	for _, expected := range []string{
		"get_account_summaries", "get_property_details", "list_google_ads_links",
		"run_report", "run_realtime_report",
	} {
		if !names[expected] {
			t.Errorf("Expected tool %s to be defined", expected)
		}
	}
}
