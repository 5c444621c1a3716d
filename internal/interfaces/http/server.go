package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"shop/internal/entities"
)

type CheckoutService interface {
	Reconcile(ctx context.Context, paymentReference string, oc entities.OrderContext) (entities.ReconciliationResult, error)
	IsProcessed(ctx context.Context, paymentReference string) (bool, error)
	GetOrder(ctx context.Context, orderNumber string) (*entities.OnlineOrder, error)
	GetTicketSale(ctx context.Context, ticketNumber string) (*entities.TicketSale, error)
}

type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, sigHeader string) error
}

type Server struct {
	e *echo.Echo

	checkoutService CheckoutService
	webhookVerifier WebhookVerifier
}

func NewServer(
	e *echo.Echo,
	checkoutService CheckoutService,
	webhookVerifier WebhookVerifier,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:               e,
		checkoutService: checkoutService,
		webhookVerifier: webhookVerifier,
	}

	e.POST("/webhooks/stripe", srv.StripeWebhookHandler)
	e.POST("/checkout/complete", srv.CompleteCheckoutHandler)

	e.GET("/orders/:orderNumber", srv.GetOrderHandler)
	e.GET("/ticket-sales/:ticketNumber", srv.GetTicketSaleHandler)

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	// logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				Info("Handling a request")

			err := next(c)

			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Error("Request handling error")
			}

			return err
		}
	})
	return srv
}

func (s *Server) Start() error {
	err := s.e.Start(":8080")
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
