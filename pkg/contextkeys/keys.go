// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated *org.User
	// Set by: middleware.RequireAuth (pkg/middleware/auth.go)
	// Required by: all protected API endpoints, access middleware
	UserKey Key = "user"

	// SessionKey contains the *auth.Session backing the request
	// Set by: middleware.RequireAuth
	SessionKey Key = "session"

	// DocumentKey contains the *content.DocumentProjection loaded by the
	// document access middleware so handlers avoid a second load
	// Set by: access.RequireDocumentAccess
	DocumentKey Key = "document"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: logger, error responses
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability middleware
	LoggerKey Key = "logger"
)

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, user interface{}) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// WithSession adds the session to the context
func WithSession(ctx context.Context, session interface{}) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// WithDocument adds a loaded document projection to the context
func WithDocument(ctx context.Context, doc interface{}) context.Context {
	return context.WithValue(ctx, DocumentKey, doc)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
