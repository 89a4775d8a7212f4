package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// ReadyCheck reports whether a backing service is reachable.
type ReadyCheck func(ctx context.Context) error

type Deps struct {
	CartHandler  *CartHTTP
	OrderHandler *OrderHTTP
	AdminHandler *AdminHTTP
	JWTSecret    []byte
	ReadyChecks  map[string]ReadyCheck
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.ReadyChecks))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	carts := e.Group("/cart")
	carts.GET("", d.CartHandler.GetCart)
	carts.DELETE("", d.CartHandler.ClearCart)
	carts.POST("/items", d.CartHandler.AddItem)
	carts.PATCH("/items/:id", d.CartHandler.UpdateItem)
	carts.DELETE("/items/:id", d.CartHandler.RemoveItem)

	e.POST("/checkout", d.OrderHandler.Checkout)
	e.GET("/orders/:orderId", d.OrderHandler.GetOrder)

	adminMW := middleware.NewAdminGuard(d.JWTSecret)

	admin := e.Group("/admin", adminMW.RequireAdmin)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/search", d.AdminHandler.SearchOrders)
	admin.PATCH("/orders/:orderId/status", d.AdminHandler.UpdateStatus)
	admin.POST("/orders/:orderId/cancel", d.AdminHandler.CancelOrder)
	admin.GET("/stats", d.AdminHandler.Stats)
}

func ready(checks map[string]ReadyCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		failed := map[string]string{}
		for name, check := range checks {
			if err := check(c.Request().Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
		}
		return c.NoContent(http.StatusOK)
	}
}
