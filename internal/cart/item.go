package cart

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ShortName string          `json:"shortName"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image"`
}

func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

var (
	noiseWords = regexp.MustCompile(`(?i)HEADPHONES?|SPEAKERS?|EARPHONES?|WIRELESS`)
	markWord   = regexp.MustCompile(`(?i)MARK`)
)

// ShortName turns "XX99 MARK II HEADPHONES" into "XX99 MK II".
func ShortName(name string) string {
	s := noiseWords.ReplaceAllString(name, "")
	s = markWord.ReplaceAllString(s, "MK")
	return strings.TrimSpace(s)
}
