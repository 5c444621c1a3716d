package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shop/internal/domain/checkout"
)

func (s *Server) GetOrderHandler(c echo.Context) error {
	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "orderNumber is required"})
	}

	order, err := s.checkoutService.GetOrder(c.Request().Context(), orderNumber)
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "order lookup failed"})
	}

	return c.JSON(http.StatusOK, order)
}

func (s *Server) GetTicketSaleHandler(c echo.Context) error {
	ticketNumber := c.Param("ticketNumber")
	if ticketNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ticketNumber is required"})
	}

	sale, err := s.checkoutService.GetTicketSale(c.Request().Context(), ticketNumber)
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "ticket sale not found"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "ticket sale lookup failed"})
	}

	return c.JSON(http.StatusOK, sale)
}
