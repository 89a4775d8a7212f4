package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

const DefaultIndex = "orders"

var ErrEmptyQuery = errors.New("empty search query")

// OrderDoc is the searchable summary of an order.
type OrderDoc struct {
	OrderID       string          `json:"orderId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	ItemCount     int             `json:"itemCount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func DocFromOrder(o *models.Order) OrderDoc {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return OrderDoc{
		OrderID:       o.OrderID,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		City:          o.Shipping.City,
		Country:       o.Shipping.Country,
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		ItemCount:     n,
		GrandTotal:    o.Totals.GrandTotal,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type Results struct {
	Total  int64      `json:"total"`
	Orders []OrderDoc `json:"orders"`
}

type OrderIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewOrderIndex(es *elasticsearch.Client, index string) *OrderIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &OrderIndex{ES: es, Index: index}
}

// IndexOrder upserts the order summary under its public order id.
func (x *OrderIndex) IndexOrder(ctx context.Context, o *models.Order) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(DocFromOrder(o)); err != nil {
		return fmt.Errorf("encode order doc: %w", err)
	}

	res, err := x.ES.Index(
		x.Index,
		&buf,
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(o.OrderID),
	)
	if err != nil {
		return fmt.Errorf("index order %s: %w", o.OrderID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index order %s: %s: %s", o.OrderID, res.Status(), body)
	}
	return nil
}

func (x *OrderIndex) Search(ctx context.Context, query string, from, size int) (Results, error) {
	if query == "" {
		return Results{}, ErrEmptyQuery
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"orderId^3", "customerName^2", "customerEmail"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{"_score", map[string]any{"createdAt": "desc"}},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Results{}, fmt.Errorf("encode search body: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return Results{}, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		b, _ := io.ReadAll(res.Body)
		return Results{}, fmt.Errorf("search orders: %s: %s", res.Status(), b)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source OrderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Results{}, fmt.Errorf("decode search response: %w", err)
	}

	out := Results{Total: r.Hits.Total.Value, Orders: make([]OrderDoc, len(r.Hits.Hits))}
	for i, hit := range r.Hits.Hits {
		out.Orders[i] = hit.Source
	}
	return out, nil
}
