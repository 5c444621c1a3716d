package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"shop/internal/entities"
	"shop/internal/idempotency"
)

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhookHandler consumes payment_intent.succeeded events. Everything
// past signature verification is acknowledged with 200: Stripe retries on
// non-2xx, and a payload we could not reconcile now will not reconcile any
// better on the fifth redelivery. The client fallback covers the gap.
func (s *Server) StripeWebhookHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := log.FromContext(ctx)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
	}

	if err := s.webhookVerifier.VerifyWebhookSignature(body, c.Request().Header.Get("Stripe-Signature")); err != nil {
		logger.WithField("error", err).Warn("webhook signature verification failed")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid signature"})
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.WithField("error", err).Error("failed to parse webhook event")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	if event.Type != "payment_intent.succeeded" {
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	logger = logger.WithField("payment_reference", event.Data.Object.ID)
	ctx = idempotency.WithKey(ctx, event.ID)

	oc, err := orderContextFromMetadata(event.Data.Object.Metadata)
	if err != nil {
		logger.WithField("error", err).Error("failed to reconstruct order context from metadata")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	result, err := s.checkoutService.Reconcile(ctx, event.Data.Object.ID, *oc)
	if err != nil {
		logger.WithField("error", err).Error("webhook reconciliation failed")
		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	logger.
		WithField("order_number", result.OrderNumber).
		WithField("ticket_number", result.TicketNumber).
		WithField("already_processed", result.AlreadyProcessed).
		Info("webhook reconciled")

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// orderContextFromMetadata reassembles the order context JSON that the
// storefront stuffed into the payment intent. Stripe caps each metadata
// value at 500 characters, so large carts arrive chunked as
// orderData_0..N-1 plus an orderDataChunks count.
func orderContextFromMetadata(metadata map[string]string) (*entities.OrderContext, error) {
	raw, ok := metadata["orderData"]
	if !ok {
		chunkCount, err := strconv.Atoi(metadata["orderDataChunks"])
		if err != nil || chunkCount <= 0 {
			return nil, fmt.Errorf("no orderData and no valid orderDataChunks in metadata")
		}

		for i := 0; i < chunkCount; i++ {
			chunk, ok := metadata[fmt.Sprintf("orderData_%d", i)]
			if !ok {
				return nil, fmt.Errorf("orderData chunk %d of %d missing", i, chunkCount)
			}
			raw += chunk
		}
	}

	var oc entities.OrderContext
	if err := json.Unmarshal([]byte(raw), &oc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order context: %w", err)
	}
	return &oc, nil
}
