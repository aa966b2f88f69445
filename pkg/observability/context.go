package observability

import (
	"context"

	"github.com/google/uuid"
)

// Attribute keys used in log records.
const (
	CorrelationIDKey = "correlation_id"
	CausationIDKey   = "causation_id"
	RequestIDKey     = "request_id"
	UserIDKey        = "user_id"
)

// ctxField indexes the request-scoped identifiers kept in a context.
type ctxField int

const (
	fieldCorrelation ctxField = iota
	fieldCausation
	fieldRequest
	fieldUser
)

func withField(ctx context.Context, f ctxField, v string) context.Context {
	return context.WithValue(ctx, f, v)
}

func field(ctx context.Context, f ctxField) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(f).(string)
	return v
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// WithCorrelationID tags ctx with the id shared by everything one user
// action causes. An empty id starts a new chain.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withField(ctx, fieldCorrelation, orNewID(id))
}

func CorrelationIDFromContext(ctx context.Context) string { return field(ctx, fieldCorrelation) }

// WithCausationID records the event being handled, so events raised while
// handling it point back at it.
func WithCausationID(ctx context.Context, id string) context.Context {
	return withField(ctx, fieldCausation, id)
}

func CausationIDFromContext(ctx context.Context) string { return field(ctx, fieldCausation) }

// WithRequestID stores id, generating one when empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withField(ctx, fieldRequest, orNewID(id))
}

func RequestIDFromContext(ctx context.Context) string { return field(ctx, fieldRequest) }

func WithUserID(ctx context.Context, userID string) context.Context {
	return withField(ctx, fieldUser, userID)
}

func UserIDFromContext(ctx context.Context) string { return field(ctx, fieldUser) }
