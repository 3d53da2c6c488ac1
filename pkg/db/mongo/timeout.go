package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout. An earlier parent deadline is kept.
// Session contexts are rewrapped so callers that type-assert
// mongo.SessionContext still see one; the driver itself finds the session
// through ctx.Value either way.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	bounded, cancel := context.WithTimeout(ctx, timeout)
	if sc, ok := ctx.(mongo.SessionContext); ok {
		return mongo.NewSessionContext(bounded, sc), cancel
	}
	return bounded, cancel
}
