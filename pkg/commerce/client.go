// Package commerce provides the client for the storefront commerce platform,
// the authoritative system whose product records the engine mutates.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/storeops/stocksync/pkg/models"
)

const defaultTimeoutSeconds = 30

// ProductUpdate is a partial-field mutation for one product. Nil fields are
// omitted from the request body.
type ProductUpdate struct {
	Availability   *models.Availability `json:"availability,omitempty"`
	InventoryLevel *int                 `json:"inventory_level,omitempty"`
}

// IsEmpty reports whether the update carries no field changes.
func (u ProductUpdate) IsEmpty() bool {
	return u.Availability == nil && u.InventoryLevel == nil
}

// ProductUpdater is the narrow mutation interface the engine depends on, so
// tests can substitute fakes for the platform client.
type ProductUpdater interface {
	UpdateProduct(ctx context.Context, productID int64, update ProductUpdate) error
}

// APIError is a non-2xx response from the commerce platform.
type APIError struct {
	StatusCode int
	Title      string
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("commerce API returned %d: %s", e.StatusCode, e.Title)
	}

	return fmt.Sprintf("commerce API returned %d", e.StatusCode)
}

// Client talks to the commerce platform's catalog API over HTTP.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *slog.Logger
}

// NewClient creates a catalog API client for one store.
func NewClient(logger *slog.Logger, baseURL, storeHash, accessToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		baseURL:     fmt.Sprintf("%s/stores/%s/v3", baseURL, storeHash),
		accessToken: accessToken,
		logger:      logger.With("module", "commerce_client"),
	}
}

// UpdateProduct issues a partial PUT containing only the changed fields.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, update ProductUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal product update: %w", err)
	}

	url := c.baseURL + "/catalog/products/" + strconv.FormatInt(productID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create product update request: %w", err)
	}

	req.Header.Set("X-Auth-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", productID, err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Title:      errorTitle(resp.Body),
	}
}

// errorTitle extracts the platform's error title from a failure response,
// falling back to empty when the body is not the expected JSON shape.
func errorTitle(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var parsed struct {
		Title string `json:"title"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}

	return parsed.Title
}
