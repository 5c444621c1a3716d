package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"shop/internal/domain/checkout"
	"shop/internal/entities"
	"shop/internal/idempotency"
)

type CompleteCheckoutRequest struct {
	PaymentReference string                `json:"paymentReference"`
	OrderContext     entities.OrderContext `json:"orderContext"`
}

type CompleteCheckoutResponse struct {
	Success       bool   `json:"success"`
	WebhookWorked bool   `json:"webhookWorked"`
	OrderNumber   string `json:"orderNumber,omitempty"`
	TicketNumber  string `json:"ticketNumber,omitempty"`
}

// CompleteCheckoutHandler is the client-side fallback for the webhook race.
// The storefront calls it right after Stripe confirms the payment; whichever
// trigger arrives second becomes a no-op.
func (s *Server) CompleteCheckoutHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request CompleteCheckoutRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if request.PaymentReference == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "paymentReference is required"})
	}

	ctx = idempotency.WithKey(ctx, request.PaymentReference)

	webhookWorked, err := s.checkoutService.IsProcessed(ctx, request.PaymentReference)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "existence check failed"})
	}

	result, err := s.checkoutService.Reconcile(ctx, request.PaymentReference, request.OrderContext)
	if err != nil {
		log.FromContext(ctx).
			WithField("payment_reference", request.PaymentReference).
			WithField("error", err).
			Error("fallback reconciliation failed")

		if errors.Is(err, checkout.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "reconciliation failed"})
	}

	return c.JSON(http.StatusOK, CompleteCheckoutResponse{
		Success:       true,
		WebhookWorked: webhookWorked,
		OrderNumber:   result.OrderNumber,
		TicketNumber:  result.TicketNumber,
	})
}
