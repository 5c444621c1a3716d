package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	orderNumberPrefix  = "SHUSH-ORDER"
	ticketNumberPrefix = "SHUSH-TICKET"
)

// NewOrderNumber generates a globally-unique order number. Uniqueness is
// best-effort via timestamp plus randomness; the database UNIQUE constraint
// is the hard guarantee.
func NewOrderNumber() string {
	return newNumber(orderNumberPrefix)
}

func NewTicketNumber() string {
	return newNumber(ticketNumberPrefix)
}

func newNumber(prefix string) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to the
		// nanosecond clock rather than returning an error nobody can act on.
		return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixMilli(), time.Now().Nanosecond())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}
