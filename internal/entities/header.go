package entities

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	Id             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		Id:             uuid.NewString(),
		PublishedAt:    time.Now(),
		IdempotencyKey: uuid.NewString(),
	}
}

// NewEventHeaderWithIdempotencyKey keys the event to its originating payment
// so downstream consumers can deduplicate redeliveries.
func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		Id:             uuid.NewString(),
		PublishedAt:    time.Now(),
		IdempotencyKey: idempotencyKey,
	}
}
