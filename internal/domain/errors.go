package domain

import "errors"

var (
	// ErrNoResults covers both an empty search result and a recognized
	// provider downstream failure; the user sees the same message.
	ErrNoResults = errors.New("hotels: no results")

	// ErrNotFound is a missing hotel or history row.
	ErrNotFound = errors.New("not found")

	// ErrMalformed is a detail payload that failed to parse; the
	// affected candidate is skipped, not fatal to the batch.
	ErrMalformed = errors.New("hotels: malformed response")

	// ErrDeliveryRejected is a grouped-media send refused by the chat
	// channel; delivery falls back to per-item sends.
	ErrDeliveryRejected = errors.New("chat: delivery rejected")
)
