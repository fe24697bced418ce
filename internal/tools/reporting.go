package tools

import (
	"context"
	"fmt"

	"analytics-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// ReportingTools returns the tool definitions backed by the Analytics
// Data API, paired with their handlers.
func (inj *Injector) ReportingTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("run_report",
				mcp.WithDescription("Run a Google Analytics report over a date range"),
				mcp.WithString("property_id",
					mcp.Description("Numeric property ID or properties/<id> resource name; falls back to the X-Analytics-Property-Id header"),
				),
				mcp.WithString("user_email",
					mcp.Description("Email of the Google account to act as (optional when a bearer token is forwarded)"),
				),
				mcp.WithString("start_date",
					mcp.Required(),
					mcp.Description("Start date (YYYY-MM-DD, or relative like 7daysAgo)"),
				),
				mcp.WithString("end_date",
					mcp.Required(),
					mcp.Description("End date (YYYY-MM-DD, or today/yesterday)"),
				),
				mcp.WithArray("dimensions",
					mcp.Description("Dimension names, e.g. country, date, sessionSource"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("metrics",
					mcp.Required(),
					mcp.Description("Metric names, e.g. activeUsers, sessions, screenPageViews"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of rows to return (default 100)"),
				),
			),
			Handler: inj.WithDataService(handleRunReport),
		},
		{
			Tool: mcp.NewTool("run_realtime_report",
				mcp.WithDescription("Run a Google Analytics realtime report (events from the last 30 minutes)"),
				mcp.WithString("property_id",
					mcp.Description("Numeric property ID or properties/<id> resource name; falls back to the X-Analytics-Property-Id header"),
				),
				mcp.WithString("user_email",
					mcp.Description("Email of the Google account to act as (optional when a bearer token is forwarded)"),
				),
				mcp.WithArray("dimensions",
					mcp.Description("Dimension names, e.g. country, unifiedScreenName"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("metrics",
					mcp.Required(),
					mcp.Description("Metric names, e.g. activeUsers, eventCount"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum number of rows to return (default 100)"),
				),
			),
			Handler: inj.WithDataService(handleRunRealtimeReport),
		},
	}
}

func handleRunReport(ctx context.Context, svc *analyticsdata.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	property, errResult := requireProperty(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	startDate, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	metrics := req.GetStringSlice("metrics", nil)
	if len(metrics) == 0 {
		return mcp.NewToolResultError("at least one metric is required"), nil
	}

	request := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: startDate, EndDate: endDate}},
		Metrics:    metricList(metrics),
		Dimensions: dimensionList(req.GetStringSlice("dimensions", nil)),
		Limit:      int64(req.GetInt("limit", 100)),
	}

	resp, err := svc.Properties.RunReport(property, request).Context(ctx).Do()
	if err != nil {
		logging.Error("Tools", err, "run_report failed for %s", property)
		return mcp.NewToolResultError(fmt.Sprintf("failed to run report for %s: %v", property, err)), nil
	}

	return jsonResult(resp)
}

func handleRunRealtimeReport(ctx context.Context, svc *analyticsdata.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	property, errResult := requireProperty(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	metrics := req.GetStringSlice("metrics", nil)
	if len(metrics) == 0 {
		return mcp.NewToolResultError("at least one metric is required"), nil
	}

	request := &analyticsdata.RunRealtimeReportRequest{
		Metrics:    metricList(metrics),
		Dimensions: dimensionList(req.GetStringSlice("dimensions", nil)),
		Limit:      int64(req.GetInt("limit", 100)),
	}

	resp, err := svc.Properties.RunRealtimeReport(property, request).Context(ctx).Do()
	if err != nil {
		logging.Error("Tools", err, "run_realtime_report failed for %s", property)
		return mcp.NewToolResultError(fmt.Sprintf("failed to run realtime report for %s: %v", property, err)), nil
	}

	return jsonResult(resp)
}

func metricList(names []string) []*analyticsdata.Metric {
	metrics := make([]*analyticsdata.Metric, 0, len(names))
	for _, name := range names {
		metrics = append(metrics, &analyticsdata.Metric{Name: name})
	}
	return metrics
}

func dimensionList(names []string) []*analyticsdata.Dimension {
	dimensions := make([]*analyticsdata.Dimension, 0, len(names))
	for _, name := range names {
		dimensions = append(dimensions, &analyticsdata.Dimension{Name: name})
	}
	return dimensions
}
