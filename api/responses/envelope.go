package responses

import "context"

// Success wraps every 2xx body.
type Success struct {
	Data any `json:"data"`
}

// ErrorBody is the public view of a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Failure wraps every 4xx and 5xx body. RequestID lets operators find the matching log line.
type Failure struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

type requestIDKey struct{}

// WithRequestID stores the correlation id echoed in error bodies.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
