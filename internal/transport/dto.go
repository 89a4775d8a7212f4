package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
)

type AddItemRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ShortName string          `json:"shortName"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

func (r AddItemRequest) LineItem() cart.LineItem {
	return cart.LineItem{
		ID:        r.ID,
		Name:      r.Name,
		ShortName: r.ShortName,
		UnitPrice: r.Price,
		ImageRef:  r.Image,
	}
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Totals    pricing.Totals  `json:"totals"`
	ItemCount int             `json:"itemCount"`
}

func NewCartResponse(s *cart.Store) CartResponse {
	items := s.Items()
	return CartResponse{
		Items:     items,
		Totals:    pricing.ComputeTotals(items),
		ItemCount: s.ItemCount(),
	}
}

type CheckoutRequest = checkout.Form

type CheckoutResponse struct {
	Order     *models.Order `json:"order"`
	MessageID string        `json:"messageId,omitempty"`
	EmailSent bool          `json:"emailSent"`
	Warning   string        `json:"warning,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrdersResponse struct {
	Orders []models.Order `json:"orders"`
}
