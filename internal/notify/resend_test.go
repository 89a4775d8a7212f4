package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
)

func sampleMessage() Message {
	items := []models.OrderItem{
		{ProductID: "xx99-mark-two", Name: "XX99 Mark II Headphones", ShortName: "XX99 MK II", UnitPrice: decimal.NewFromInt(2999), Quantity: 1},
		{ProductID: "yx1", Name: "YX1 Wireless Earphones", ShortName: "YX1", UnitPrice: decimal.NewFromInt(599), Quantity: 2},
	}
	return Message{
		To:              "alexei@mail.com",
		CustomerName:    "Alexei Ward",
		OrderID:         "ORD-LOYW3V28-AB12C",
		Items:           items,
		Totals:          pricing.ComputeTotals(items),
		ShippingAddress: "1137 Williams Avenue\nNew York, 10001\nUnited States",
	}
}

func TestResendClient_Send(t *testing.T) {
	t.Parallel()

	var got sendEmailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "re_test", From: "Audiophile <orders@audiophile.test>", Service: "notify-test"})

	id, err := c.Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"alexei@mail.com"}, got.To)
	assert.Equal(t, "Order Confirmation - ORD-LOYW3V28-AB12C", got.Subject)
	assert.Equal(t, "Audiophile <orders@audiophile.test>", got.From)
	assert.Contains(t, got.HTML, "XX99 MK II")
	assert.Contains(t, got.HTML, "1137 Williams Avenue<br>New York, 10001<br>United States")
	assert.Contains(t, got.Text, "GRAND TOTAL  $ 5,086.4")
}

func TestResendClient_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "re_test", Service: "notify-test"})

	_, err := c.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Invalid to field")
}

func TestResendClient_RejectionsKeepBreakerClosed(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "re_test", Service: "notify-reject-test"})

	for i := 0; i < 6; i++ {
		_, err := c.Send(context.Background(), sampleMessage())
		require.ErrorIs(t, err, ErrRejected)
		assert.NotContains(t, err.Error(), "is open")
	}
	assert.Equal(t, 6, calls)
}

func TestResendClient_RateLimitCountsAsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "re_test", Service: "notify-ratelimit-test"})

	for i := 0; i < 3; i++ {
		_, err := c.Send(context.Background(), sampleMessage())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	}

	_, err := c.Send(context.Background(), sampleMessage())
	assert.Contains(t, err.Error(), "is open")
}

func TestResendClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{BaseURL: srv.URL, APIKey: "re_test", Service: "notify-breaker-test"})

	for i := 0; i < 3; i++ {
		_, err := c.Send(context.Background(), sampleMessage())
		require.Error(t, err)
	}

	_, err := c.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is open")
	assert.Equal(t, 3, calls)
}

func TestSend_MissingFields(t *testing.T) {
	t.Parallel()

	c := NewResendClient(ResendConfig{BaseURL: "http://127.0.0.1:1", Service: "notify-test"})

	for _, mutate := range []func(*Message){
		func(m *Message) { m.To = "" },
		func(m *Message) { m.CustomerName = " " },
		func(m *Message) { m.OrderID = "" },
	} {
		m := sampleMessage()
		mutate(&m)
		_, err := c.Send(context.Background(), m)
		assert.ErrorIs(t, err, ErrMissingFields)
	}
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	id, err := LogSender{}.Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	assert.Equal(t, "log-ORD-LOYW3V28-AB12C", id)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"0":       "$ 0",
		"50":      "$ 50",
		"2999":    "$ 2,999",
		"5396.4":  "$ 5,396.4",
		"1234567": "$ 1,234,567",
		"139.93":  "$ 139.93",
		"-1200":   "$ -1,200",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(decimal.RequireFromString(in)), in)
	}
}

func TestRender_EscapesHTML(t *testing.T) {
	t.Parallel()

	m := sampleMessage()
	m.CustomerName = "<script>x</script>"

	html, text, err := Render(m)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.True(t, strings.Contains(text, "<script>x</script>"))
}
