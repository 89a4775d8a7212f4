package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	defaultTimeout = 5 * time.Second
)

// ErrRejected marks a 4xx answer about one message, such as a bad recipient.
// It does not count against the circuit breaker.
var ErrRejected = errors.New("resend rejected the message")

type ResendConfig struct {
	BaseURL string
	APIKey  string
	From    string
	Service string
	Timeout time.Duration
}

// ResendClient sends confirmation mails through the Resend HTTP API.
type ResendClient struct {
	http    *resty.Client
	breaker *breaker
	from    string
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func NewResendClient(cfg ResendConfig) *ResendClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &ResendClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetAuthToken(cfg.APIKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout).
			SetRetryCount(0),
		breaker: newBreaker("resend", cfg.Service),
		from:    cfg.From,
	}
}

func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	html, text, err := Render(msg)
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}

	body := sendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject(),
		HTML:    html,
		Text:    text,
	}

	res, err := c.breaker.Execute(func() (any, error) {
		var out sendEmailResponse
		var apiErr apiError

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			SetError(&apiErr).
			Post("/emails")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, statusError(resp.StatusCode(), apiErr.Message)
		}
		if out.ID == "" {
			return nil, errors.New("resend: empty message id")
		}
		return out.ID, nil
	})
	if err != nil {
		return "", err
	}

	id := res.(string)
	logging.FromContext(ctx).Debug("confirmation_sent", "order_id", msg.OrderID, "message_id", id)
	return id, nil
}

// LogSender writes the rendered mail to the log instead of sending it.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	_, text, err := Render(msg)
	if err != nil {
		return "", err
	}
	logging.FromContext(ctx).Info("confirmation_logged", "to", msg.To, "subject", msg.Subject(), "body", text)
	return "log-" + msg.OrderID, nil
}

func statusError(code int, message string) error {
	if message == "" {
		message = "unexpected status"
	}
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %d %s", ErrRejected, code, message)
	}
	return fmt.Errorf("resend: %d %s", code, message)
}
