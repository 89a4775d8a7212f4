package search

import (
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ClientConfig struct {
	URL      string
	User     string
	Password string
}

// NewClient connects and checks the cluster answers Info.
func NewClient(ctx context.Context, cfg ClientConfig) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "elasticsearch", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	l.Info("elasticsearch_connected")
	return client, nil
}
