package tenant

import "context"

type ctxKey struct{}

// NewContext records the tenant resolved at the request boundary. Only
// handlers read it back; everything below them takes the id explicitly.
func NewContext(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
