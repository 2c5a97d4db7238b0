package core

import "context"

type requesterKey struct{}

// Requester identifies who triggered a fetch. IP is stored with history
// snapshots; UserAgent only appears in logs.
type Requester struct {
	IP        string
	UserAgent string
}

// WithRequester attaches the requester to ctx.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFromContext returns the requester, or the zero value.
func RequesterFromContext(ctx context.Context) Requester {
	r, _ := ctx.Value(requesterKey{}).(Requester)
	return r
}

// logFields returns slog attributes for the non-empty requester fields.
func (r Requester) logFields() []any {
	var fields []any
	if r.IP != "" {
		fields = append(fields, "ip", r.IP)
	}
	if r.UserAgent != "" {
		fields = append(fields, "user_agent", r.UserAgent)
	}
	return fields
}
