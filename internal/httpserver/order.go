package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const msgCreateFailed = "Failed to create order. Please try again."

type OrderHTTP struct {
	Svc          *service.OrderService
	Carts        *cart.Registry
	SecureCookie bool
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	store := h.Carts.Get(ctx, sessionID(c, h.SecureCookie))

	res, err := h.Svc.Checkout(ctx, store, req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			l.Warn("checkout_error", "status", 422, "reason", "validation", "fields", len(verr.Fields))
			return c.JSON(http.StatusUnprocessableEntity, transport.ValidationErrorResponse{
				Error:  "validation failed",
				Fields: verr.Fields,
			})
		case errors.Is(err, service.ErrEmptyCart):
			l.Warn("checkout_error", "status", 400, "reason", "empty cart")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		default:
			l.Error("checkout_error", "status", 503, "reason", "persist", "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, msgCreateFailed)
		}
	}

	resp := transport.CheckoutResponse{
		Order:     res.Order,
		MessageID: res.MessageID,
		EmailSent: res.NotificationErr == nil,
	}
	if res.NotificationErr != nil {
		resp.Warning = "Order placed, but the confirmation email could not be sent."
	}

	l.Info("checkout_success", "order_id", res.Order.OrderID)
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	order, err := h.Svc.GetOrder(ctx, c.Param("orderId"))
	if err != nil {
		return orderError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

type AdminHTTP struct {
	Svc   *service.OrderService
	Index *search.OrderIndex
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	var (
		orders []models.Order
		err    error
	)
	if email := strings.TrimSpace(c.QueryParam("email")); email != "" {
		orders, err = h.Svc.ListByEmail(ctx, email)
	} else {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		orders, err = h.Svc.ListRecent(ctx, limit)
	}
	if err != nil {
		return orderError(l, "list_orders_error", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, transport.OrdersResponse{Orders: orders})
}

func (h *AdminHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.search_orders")

	if h.Index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is disabled")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := search.Calculate(page, size)

	res, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_orders_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search failed")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_status")

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "unknown status", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Svc.UpdateStatus(ctx, c.Param("orderId"), status)
	if err != nil {
		return orderError(l, "update_status_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.cancel_order")

	order, err := h.Svc.CancelOrder(ctx, c.Param("orderId"))
	if err != nil {
		return orderError(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Svc.GetStats(ctx)
	if err != nil {
		return orderError(l, "stats_error", err)
	}
	return c.JSON(http.StatusOK, st)
}

func orderError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidTransition):
		l.Warn(event, "status", 409, "reason", "invalid transition", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
