// Package idempotency carries the deduplication key of the current trigger
// (the Stripe event id on the webhook path, the payment reference on the
// fallback path) through the context, so events published downstream are
// keyed to their origin.
package idempotency

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func GetKey(ctx context.Context) string {
	key, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return uuid.NewString()
	}

	return key
}
