package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
)

var ErrMissingFields = errors.New("missing required fields")

// Sender delivers an order confirmation and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Message struct {
	To              string
	CustomerName    string
	OrderID         string
	Items           []models.OrderItem
	Totals          pricing.Totals
	ShippingAddress string
}

// FromOrder builds the confirmation for a stored order.
func FromOrder(o *models.Order) Message {
	return Message{
		To:              o.Customer.Email,
		CustomerName:    o.Customer.Name,
		OrderID:         o.OrderID,
		Items:           o.Items,
		Totals:          o.Totals,
		ShippingAddress: o.Shipping.Formatted(),
	}
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || strings.TrimSpace(m.CustomerName) == "" || strings.TrimSpace(m.OrderID) == "" {
		return ErrMissingFields
	}
	return nil
}

func (m Message) Subject() string {
	return "Order Confirmation - " + m.OrderID
}

// FormatPrice renders amounts the way the storefront shows them: "$ 2,999",
// "$ 5,396.4".
func FormatPrice(d decimal.Decimal) string {
	d = d.Round(2)
	neg := d.IsNegative()
	s := d.Abs().String()

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	if neg {
		return "$ -" + b.String()
	}
	return "$ " + b.String()
}
