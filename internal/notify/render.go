package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
)

var funcs = map[string]any{
	"price": FormatPrice,
	"lineTotal": func(p decimal.Decimal, q int) decimal.Decimal {
		return p.Mul(decimal.NewFromInt(int64(q)))
	},
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

const htmlBody = `<!DOCTYPE html>
<html><body style="font-family:Manrope,Arial,sans-serif;color:#000">
<h1>THANK YOU FOR YOUR ORDER</h1>
<p>Hi {{.CustomerName}}, your order <strong>{{.OrderID}}</strong> has been received.</p>
<table cellpadding="6">
{{range .Items}}<tr><td>{{.ShortName}}</td><td>x{{.Quantity}}</td><td>{{price (lineTotal .UnitPrice .Quantity)}}</td></tr>
{{end}}</table>
<table cellpadding="4">
<tr><td>TOTAL</td><td>{{price .Totals.Subtotal}}</td></tr>
<tr><td>SHIPPING</td><td>{{price .Totals.Shipping}}</td></tr>
<tr><td>VAT (INCLUDED)</td><td>{{price .Totals.VAT}}</td></tr>
<tr><td><strong>GRAND TOTAL</strong></td><td><strong>{{price .Totals.GrandTotal}}</strong></td></tr>
</table>
<h3>SHIPPING ADDRESS</h3>
<p>{{range $i, $l := lines .ShippingAddress}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
</body></html>
`

const textBody = `THANK YOU FOR YOUR ORDER

Hi {{.CustomerName}}, your order {{.OrderID}} has been received.

{{range .Items}}{{.ShortName}} x{{.Quantity}}  {{price (lineTotal .UnitPrice .Quantity)}}
{{end}}
TOTAL        {{price .Totals.Subtotal}}
SHIPPING     {{price .Totals.Shipping}}
VAT          {{price .Totals.VAT}}
GRAND TOTAL  {{price .Totals.GrandTotal}}

SHIPPING ADDRESS
{{.ShippingAddress}}
`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("confirmation.html").Funcs(funcs).Parse(htmlBody))
	textTmpl = texttemplate.Must(texttemplate.New("confirmation.txt").Funcs(funcs).Parse(textBody))
)

// Render returns the HTML and plain-text bodies of the confirmation mail.
func Render(m Message) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, m); err != nil {
		return "", "", err
	}
	if err := textTmpl.Execute(&tb, m); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
