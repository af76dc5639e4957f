package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mutablelogic/go-client"

	"microcms-mcp-server/internal/domain"
)

// apiKeyHeader carries the microCMS API key on every request.
const apiKeyHeader = "X-MICROCMS-API-KEY"

// MicroCMSClient handles microCMS content API interactions.
// It implements domain.ContentClient. The credentials are fixed at
// construction, so a single client is safe to share between concurrent
// tool calls.
type MicroCMSClient struct {
	*client.Client
	baseURL string
}

var _ domain.ContentClient = (*MicroCMSClient)(nil)

// NewMicroCMSClient creates a new microCMS API client.
// No request is made until ListContent or GetContent is called.
func NewMicroCMSClient(cfg domain.MicroCMSConfig, opts ...client.ClientOpt) (*MicroCMSClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if cfg.ServiceDomain == "" && cfg.BaseURL == "" {
		return nil, errors.New("service domain is required")
	}

	baseURL := cfg.APIBaseURL()
	opts = append(opts,
		client.OptEndpoint(baseURL),
		client.OptHeader(apiKeyHeader, cfg.APIKey),
	)

	c, err := client.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create microCMS client: %w", err)
	}

	return &MicroCMSClient{
		Client:  c,
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *MicroCMSClient) BaseURL() string {
	return c.baseURL
}

// ListContent retrieves a list of content from endpoint.
// GET {base}/{endpoint}?{query}
func (c *MicroCMSClient) ListContent(ctx context.Context, endpoint string, query domain.Query) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	var response json.RawMessage
	if err := c.DoWithContext(ctx, nil, &response, client.OptPath(endpoint), client.OptQuery(query.Values())); err != nil {
		return nil, err
	}

	return response, nil
}

// GetContent retrieves a single content item by ID.
// GET {base}/{endpoint}/{contentID}?{query}
func (c *MicroCMSClient) GetContent(ctx context.Context, endpoint, contentID string, query domain.Query) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if contentID == "" {
		return nil, errors.New("content ID is required")
	}

	var response json.RawMessage
	if err := c.DoWithContext(ctx, nil, &response, client.OptPath(endpoint, contentID), client.OptQuery(query.Values())); err != nil {
		return nil, err
	}

	return response, nil
}
