package auth

// OAuth scopes requested from Google. The readonly Analytics scope covers
// both the Admin and Data APIs; the email scope lets us resolve the
// authenticated user's identity.
const (
	ScopeAnalyticsReadonly = "https://www.googleapis.com/auth/analytics.readonly"
	ScopeUserinfoEmail     = "https://www.googleapis.com/auth/userinfo.email"
)

// RequiredScopes returns the scope set every usable credential must carry.
func RequiredScopes() []string {
	return []string{ScopeAnalyticsReadonly, ScopeUserinfoEmail}
}
