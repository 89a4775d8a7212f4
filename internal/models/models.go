package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/pricing"
)

type Customer struct {
	Name  string `gorm:"not null"       json:"name"`
	Email string `gorm:"index;not null" json:"email"`
	Phone string `gorm:"not null"       json:"phoneNumber"`
}

type ShippingAddress struct {
	Address string `gorm:"not null" json:"address"`
	ZipCode string `gorm:"not null" json:"zipCode"`
	City    string `gorm:"not null" json:"city"`
	Country string `gorm:"not null" json:"country"`
}

// Formatted renders the three-line address block used in mails.
func (s ShippingAddress) Formatted() string {
	return s.Address + "\n" + s.City + ", " + s.ZipCode + "\n" + s.Country
}

type Order struct {
	ID            uint            `gorm:"primaryKey"                            json:"-"`
	OrderID       string          `gorm:"uniqueIndex;size:40;not null"          json:"orderId"`
	Customer      Customer        `gorm:"embedded;embeddedPrefix:customer_"     json:"customer"`
	Shipping      ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"     json:"shipping"`
	PaymentMethod string          `gorm:"size:16;not null"                      json:"paymentMethod"`
	Items         []OrderItem     `gorm:"foreignKey:OrderRef;constraint:OnDelete:CASCADE" json:"items"`
	Totals        pricing.Totals  `gorm:"embedded;embeddedPrefix:total_"        json:"totals"`
	Status        Status          `gorm:"size:16;index;not null"                json:"status"`
	CreatedAt     time.Time       `gorm:"index;not null"                        json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null"                              json:"updatedAt"`
}

// OrderItem is a frozen copy of a cart line taken when the order is placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"-"`
	OrderRef  uint            `gorm:"index;not null"              json:"-"`
	Position  int             `gorm:"not null"                    json:"-"`
	ProductID string          `gorm:"not null"                    json:"id"`
	Name      string          `gorm:"not null"                    json:"name"`
	ShortName string          `gorm:"not null"                    json:"shortName"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity  int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	ImageRef  string          `json:"image"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Stats struct {
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	StatusCounts map[Status]int  `json:"statusCounts"`
}
