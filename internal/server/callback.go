package server

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"analytics-mcp/internal/auth"
	"analytics-mcp/pkg/logging"
)

// handleOAuthCallback completes the Google OAuth flow. The browser hits this
// endpoint after the user grants consent.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	stateParam := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")
	errorDesc := r.URL.Query().Get("error_description")

	if errorParam != "" {
		logging.Warn("OAuth", "OAuth callback received error: %s - %s", errorParam, errorDesc)
		s.renderErrorPage(w, fmt.Sprintf("Authentication failed: %s", errorDesc))
		return
	}

	if code == "" || stateParam == "" {
		logging.Warn("OAuth", "OAuth callback missing code or state parameter")
		s.renderErrorPage(w, "Invalid callback: missing required parameters")
		return
	}

	email, err := s.flow.HandleAuthCallback(r.Context(), stateParam, code, "")
	if err != nil {
		var stateErr *auth.StateError
		if errors.As(err, &stateErr) {
			logging.Warn("OAuth", "OAuth callback with invalid state: %s", stateErr.Reason)
			s.renderErrorPage(w, "Authentication session expired. Please try again.")
			return
		}
		logging.Error("OAuth", err, "Failed to complete OAuth callback")
		s.renderErrorPage(w, "Failed to complete authentication. Please try again.")
		return
	}

	logging.Info("OAuth", "Successfully authenticated %s", email)
	s.renderSuccessPage(w, email)
}

// setCallbackHeaders sets headers for the HTML callback responses.
func setCallbackHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// renderSuccessPage renders an HTML page indicating successful authentication.
func (s *Server) renderSuccessPage(w http.ResponseWriter, email string) {
	setCallbackHeaders(w)
	w.WriteHeader(http.StatusOK)

	safeEmail := html.EscapeString(email)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Authentication Successful - Analytics MCP</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: linear-gradient(135deg, #1a1a2e 0%%, #16213e 50%%, #0f3460 100%%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            color: #e8e8e8;
        }
        .container {
            text-align: center;
            padding: 3rem;
            background: rgba(255, 255, 255, 0.05);
            border-radius: 16px;
            border: 1px solid rgba(255, 255, 255, 0.1);
            backdrop-filter: blur(10px);
            max-width: 500px;
            margin: 1rem;
        }
        .checkmark {
            width: 80px;
            height: 80px;
            margin: 0 auto 1.5rem;
            background: linear-gradient(135deg, #00d4aa 0%%, #00a896 100%%);
            border-radius: 50%%;
            display: flex;
            align-items: center;
            justify-content: center;
            font-size: 2.5rem;
        }
        h1 {
            font-size: 1.75rem;
            font-weight: 600;
            margin-bottom: 0.5rem;
            color: #fff;
        }
        .account {
            color: #00d4aa;
            font-weight: 500;
        }
        p {
            color: #a0a0a0;
            line-height: 1.6;
            margin-top: 1rem;
        }
        .footer {
            margin-top: 2rem;
            padding-top: 1.5rem;
            border-top: 1px solid rgba(255, 255, 255, 0.1);
            font-size: 0.875rem;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="checkmark">✓</div>
        <h1>Authentication Successful</h1>
        <p>Signed in as <span class="account">%s</span>.</p>
        <p>You can now close this window and return to your client.</p>
        <p>Retry the previous request to continue.</p>
        <div class="footer">
            Powered by Analytics MCP
        </div>
    </div>
</body>
</html>`, safeEmail)

	w.Write([]byte(htmlContent))
}

// renderErrorPage renders an HTML page indicating an authentication error.
func (s *Server) renderErrorPage(w http.ResponseWriter, message string) {
	setCallbackHeaders(w)
	w.WriteHeader(http.StatusBadRequest)

	safeMessage := html.EscapeString(message)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Authentication Failed - Analytics MCP</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: linear-gradient(135deg, #1a1a2e 0%%, #16213e 50%%, #0f3460 100%%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            color: #e8e8e8;
        }
        .container {
            text-align: center;
            padding: 3rem;
            background: rgba(255, 255, 255, 0.05);
            border-radius: 16px;
            border: 1px solid rgba(255, 255, 255, 0.1);
            backdrop-filter: blur(10px);
            max-width: 500px;
            margin: 1rem;
        }
        .error-icon {
            width: 80px;
            height: 80px;
            margin: 0 auto 1.5rem;
            background: linear-gradient(135deg, #ff6b6b 0%%, #ee5a5a 100%%);
            border-radius: 50%%;
            display: flex;
            align-items: center;
            justify-content: center;
            font-size: 2.5rem;
        }
        h1 {
            font-size: 1.75rem;
            font-weight: 600;
            margin-bottom: 0.5rem;
            color: #fff;
        }
        .message {
            color: #ff6b6b;
            font-weight: 500;
            margin-top: 1rem;
        }
        p {
            color: #a0a0a0;
            line-height: 1.6;
            margin-top: 1rem;
        }
        .footer {
            margin-top: 2rem;
            padding-top: 1.5rem;
            border-top: 1px solid rgba(255, 255, 255, 0.1);
            font-size: 0.875rem;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="error-icon">✕</div>
        <h1>Authentication Failed</h1>
        <p class="message">%s</p>
        <p>Please return to your client and try again.</p>
        <div class="footer">
            Powered by Analytics MCP
        </div>
    </div>
</body>
</html>`, safeMessage)

	w.Write([]byte(htmlContent))
}
