// Package auth implements the request-scoped authentication and
// credential-resolution pipeline for analytics-mcp.
//
// The pipeline has four cooperating parts:
//
//   - Token extraction middleware (TokenExtraction) intercepts every
//     inbound HTTP request, applies path/method exemptions, parses the
//     Authorization header, and attaches a request-scoped AuthContext.
//     In OAuth 2.1 mode it additionally verifies bearer tokens as
//     Google-signed JWTs before trusting them.
//
//   - The SessionStore binds bearer credentials to session identifiers
//     with TTL-based expiry, and holds one-time OAuth CSRF states with
//     at-most-once consumption semantics.
//
//   - The Resolver turns a user identity and optional session identifier
//     into a currently valid credential, consulting the session store,
//     then the persisted CredentialStore (refreshing against the token
//     endpoint when possible), and failing with ErrNoCredentials when
//     nothing is usable.
//
//   - The Flow generates authorization URLs and completes the
//     authorization-code exchange on callback, writing obtained
//     credentials into both stores.
//
// Credentials never appear verbatim in logs; use RedactedToken and the
// masking helpers in pkg/logging at every boundary where a token or
// session identifier could leak.
package auth
