package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"analytics-mcp/internal/analytics"
	"analytics-mcp/internal/auth"
	"analytics-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
)

// AdminTools returns the tool definitions backed by the Analytics Admin
// API, paired with their handlers.
func (inj *Injector) AdminTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("get_account_summaries",
				mcp.WithDescription("List summaries of all Google Analytics accounts and properties the caller can access"),
				mcp.WithString("user_email",
					mcp.Description("Email of the Google account to act as (optional when a bearer token is forwarded)"),
				),
				mcp.WithNumber("page_size",
					mcp.Description("Maximum number of account summaries to return (default 50)"),
				),
				mcp.WithString("page_token",
					mcp.Description("Page token from a previous call"),
				),
			),
			Handler: inj.WithAdminService(handleGetAccountSummaries),
		},
		{
			Tool: mcp.NewTool("get_property_details",
				mcp.WithDescription("Get details of a single Google Analytics property"),
				mcp.WithString("property_id",
					mcp.Description("Numeric property ID or properties/<id> resource name; falls back to the X-Analytics-Property-Id header"),
				),
				mcp.WithString("user_email",
					mcp.Description("Email of the Google account to act as (optional when a bearer token is forwarded)"),
				),
			),
			Handler: inj.WithAdminService(handleGetPropertyDetails),
		},
		{
			Tool: mcp.NewTool("list_google_ads_links",
				mcp.WithDescription("List Google Ads links configured on a Google Analytics property"),
				mcp.WithString("property_id",
					mcp.Description("Numeric property ID or properties/<id> resource name; falls back to the X-Analytics-Property-Id header"),
				),
				mcp.WithString("user_email",
					mcp.Description("Email of the Google account to act as (optional when a bearer token is forwarded)"),
				),
				mcp.WithString("page_token",
					mcp.Description("Page token from a previous call"),
				),
			),
			Handler: inj.WithAdminService(handleListGoogleAdsLinks),
		},
	}
}

func handleGetAccountSummaries(ctx context.Context, svc *analyticsadmin.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	call := svc.AccountSummaries.List().Context(ctx)

	pageSize := req.GetInt("page_size", 50)
	call = call.PageSize(int64(pageSize))
	if token := req.GetString("page_token", ""); token != "" {
		call = call.PageToken(token)
	}

	resp, err := call.Do()
	if err != nil {
		logging.Error("Tools", err, "get_account_summaries failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list account summaries: %v", err)), nil
	}

	return jsonResult(resp)
}

func handleGetPropertyDetails(ctx context.Context, svc *analyticsadmin.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	property, errResult := requireProperty(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	resp, err := svc.Properties.Get(property).Context(ctx).Do()
	if err != nil {
		logging.Error("Tools", err, "get_property_details failed for %s", property)
		return mcp.NewToolResultError(fmt.Sprintf("failed to get property %s: %v", property, err)), nil
	}

	return jsonResult(resp)
}

func handleListGoogleAdsLinks(ctx context.Context, svc *analyticsadmin.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	property, errResult := requireProperty(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	call := svc.Properties.GoogleAdsLinks.List(property).Context(ctx)
	if token := req.GetString("page_token", ""); token != "" {
		call = call.PageToken(token)
	}

	resp, err := call.Do()
	if err != nil {
		logging.Error("Tools", err, "list_google_ads_links failed for %s", property)
		return mcp.NewToolResultError(fmt.Sprintf("failed to list Google Ads links for %s: %v", property, err)), nil
	}

	return jsonResult(resp)
}

// requireProperty resolves the target property from the property_id
// argument or the request-scoped default set via header. Returns an error
// result when neither is present.
func requireProperty(ctx context.Context, req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	property := analytics.NormalizePropertyID(req.GetString("property_id", ""))
	if property == "" {
		if ac := auth.FromContext(ctx); ac != nil {
			property = analytics.NormalizePropertyID(ac.PropertyID)
		}
	}
	if property == "" {
		return "", mcp.NewToolResultError("property_id is required (argument or X-Analytics-Property-Id header)")
	}
	return property, nil
}

// jsonResult marshals an API response into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
