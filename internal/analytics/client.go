package analytics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Client kinds used as per-request cache keys and for scoping credential
// resolution to an API surface.
const (
	KindAdmin = "admin"
	KindData  = "data"
)

// NewAdminService constructs an Analytics Admin API client authenticated
// by the given token source.
func NewAdminService(ctx context.Context, ts oauth2.TokenSource) (*analyticsadmin.Service, error) {
	svc, err := analyticsadmin.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Admin client: %w", err)
	}
	return svc, nil
}

// NewDataService constructs an Analytics Data API client authenticated by
// the given token source.
func NewDataService(ctx context.Context, ts oauth2.TokenSource) (*analyticsdata.Service, error) {
	svc, err := analyticsdata.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data client: %w", err)
	}
	return svc, nil
}

// NormalizePropertyID converts a bare numeric property ID into the
// resource name the Analytics APIs expect. Already-qualified names pass
// through unchanged.
func NormalizePropertyID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "properties/") {
		return id
	}
	return "properties/" + id
}
