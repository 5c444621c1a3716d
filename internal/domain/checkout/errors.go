package checkout

import "errors"

var (
	// ErrInvalidInput marks malformed reconcile requests: missing payment
	// reference, missing required customer fields, empty or inconsistent
	// carts. Surfaced as 4xx, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable marks persistence or payment-provider failures.
	// Surfaced as 5xx; the webhook redelivery is the retry mechanism.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrNotFound = errors.New("not found")
)
