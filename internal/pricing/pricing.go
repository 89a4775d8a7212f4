package pricing

import "github.com/shopspring/decimal"

var (
	VATRate      = decimal.RequireFromString("0.2")
	ShippingCost = decimal.NewFromInt(50)
)

// Pricer is anything that knows its own unit price times quantity.
type Pricer interface {
	LineTotal() decimal.Decimal
}

type Totals struct {
	Subtotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Shipping   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	VAT        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"vat"`
	GrandTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grandTotal"`
}

// ComputeTotals prices a cart. Shipping is flat and not taxed; VAT is rounded to cents.
func ComputeTotals[P Pricer](items []P) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	vat := subtotal.Mul(VATRate).Round(2)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   ShippingCost,
		VAT:        vat,
		GrandTotal: subtotal.Add(vat).Add(ShippingCost),
	}
}
