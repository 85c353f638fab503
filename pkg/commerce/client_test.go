package commerce

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/stocksync/pkg/models"
)

func intPtr(v int) *int { return &v }

func availabilityPtr(v models.Availability) *models.Availability { return &v }

func TestUpdateProduct(t *testing.T) {
	var gotPath, gotToken string

	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Auth-Token")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(slog.Default(), server.URL, "abc123", "secret-token")

	update := ProductUpdate{
		Availability:   availabilityPtr(models.AvailabilityAvailable),
		InventoryLevel: intPtr(1000),
	}

	err := client.UpdateProduct(t.Context(), 4242, update)
	require.NoError(t, err)

	assert.Equal(t, "/stores/abc123/v3/catalog/products/4242", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "available", gotBody["availability"])
	assert.InDelta(t, 1000, gotBody["inventory_level"], 0.001)
}

func TestUpdateProduct_OmitsUnchangedFields(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(slog.Default(), server.URL, "abc123", "token")

	err := client.UpdateProduct(t.Context(), 1, ProductUpdate{InventoryLevel: intPtr(0)})
	require.NoError(t, err)

	_, hasAvailability := gotBody["availability"]
	assert.False(t, hasAvailability)
	assert.InDelta(t, 0, gotBody["inventory_level"], 0.001)
}

func TestUpdateProduct_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"title": "inventory_level must be >= 0"}`))
	}))
	defer server.Close()

	client := NewClient(slog.Default(), server.URL, "abc123", "token")

	err := client.UpdateProduct(t.Context(), 1, ProductUpdate{InventoryLevel: intPtr(-1)})
	require.Error(t, err)

	var apiErr *APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "inventory_level must be >= 0")
}

func TestUpdateProduct_APIErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(slog.Default(), server.URL, "abc123", "token")

	err := client.UpdateProduct(t.Context(), 1, ProductUpdate{InventoryLevel: intPtr(5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestProductUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ProductUpdate{}.IsEmpty())
	assert.False(t, ProductUpdate{InventoryLevel: intPtr(1)}.IsEmpty())
}
