package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
)

type Typed interface {
	EventType() string
}

type OrderCreated struct {
	Type          string          `json:"type"`
	OrderID       string          `json:"orderId"`
	Email         string          `json:"email"`
	PaymentMethod string          `json:"paymentMethod"`
	ItemCount     int             `json:"itemCount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (OrderCreated) EventType() string { return TypeOrderCreated }

type OrderStatusChanged struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderStatusChanged) EventType() string { return TypeOrderStatusChanged }
