package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Carts        *cart.Registry
	SecureCookie bool
}

func (h *CartHTTP) store(c echo.Context) *cart.Store {
	return h.Carts.Get(c.Request().Context(), sessionID(c, h.SecureCookie))
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.store(c)))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.add_item")

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || strings.TrimSpace(req.Name) == "" || req.Price.IsNegative() {
		l.Warn("add_item_error", "status", 400, "reason", "invalid item", "id", req.ID)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s := h.store(c)
	s.AddItem(req.LineItem(), req.Quantity)

	l.Info("add_item_success", "id", req.ID, "quantity", s.Quantity(req.ID))
	return c.JSON(http.StatusOK, transport.NewCartResponse(s))
}

// UpdateItem sets a quantity. Anything below one removes the line.
func (h *CartHTTP) UpdateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.update_item")

	var req transport.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := c.Param("id")
	s := h.store(c)
	if !s.Contains(id) {
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}

	if *req.Quantity < 1 {
		s.RemoveItem(id)
	} else {
		s.UpdateQuantity(id, *req.Quantity)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(s))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	s := h.store(c)
	s.RemoveItem(c.Param("id"))
	return c.JSON(http.StatusOK, transport.NewCartResponse(s))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	s := h.store(c)
	s.Clear()
	return c.JSON(http.StatusOK, transport.NewCartResponse(s))
}
