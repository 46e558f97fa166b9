package onec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-sync/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClientConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		Token:             "test-token",
		TimeoutSeconds:    5,
		PageSize:          2,
		RequestsPerSecond: 1000,
		Burst:             1000,
		Mandatory:         true,
	}
}

func productPage(products ...Product) []byte {
	body, _ := json.Marshal(map[string]any{"result": products})
	return body
}

func shortProduct(article, name string) Product {
	return Product{Article: article, Name: name}
}

func TestShortProducts_Pagination(t *testing.T) {
	var gotAuth, gotAccept string
	pages := map[string][]byte{
		"0": productPage(shortProduct("X1", "Acme"), shortProduct("X2", "Widget")),
		"2": productPage(shortProduct("X3", "Gadget")),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		assert.Equal(t, productShortPath, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		page, ok := pages[r.URL.Query().Get("offset")]
		require.True(t, ok, "unexpected offset %s", r.URL.Query().Get("offset"))
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	products, err := client.ShortProducts(context.Background())
	require.NoError(t, err)

	assert.Len(t, products, 3)
	assert.Equal(t, "X3", products[2].Article)
	assert.Equal(t, "Token test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestShortProducts_EmptyPageStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The upstream signals an empty result with 201 and no body.
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	products, err := client.ShortProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestShortProducts_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"Unauthorized", http.StatusUnauthorized, false},
		{"Forbidden", http.StatusForbidden, false},
		{"TooManyRequests", http.StatusTooManyRequests, true},
		{"ServerError", http.StatusInternalServerError, true},
		{"BadGateway", http.StatusBadGateway, true},
		{"NotFound", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(testClientConfig(srv.URL))
			_, err := client.ShortProducts(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.transient, source.IsTransient(err))
		})
	}
}

func TestShortProducts_MalformedPayloadIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))
	_, err := client.ShortProducts(context.Background())
	require.Error(t, err)
	assert.False(t, source.IsTransient(err))
}

func TestAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(productPage(Product{
			Article: "X1",
			Name:    "Acme Cable",
			Brand:   "Acme",
			Country: "DE",
			Unit:    "м",
		}))
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.PageSize = 10
	adapter := NewAdapter(cfg, zap.NewNop())

	assert.Equal(t, "onec", adapter.Name())
	assert.True(t, adapter.Mandatory())

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "X1", rec.Key)
	assert.Equal(t, "onec", rec.Source)
	assert.False(t, rec.ObservedAt.IsZero())
	assert.Equal(t, "Acme Cable", rec.Fields["name"])
	assert.Equal(t, "Acme", rec.Fields["brand"])
	assert.Equal(t, "DE", rec.Fields["country"])
	assert.Equal(t, "м", rec.Fields["unit"])
	assert.NotContains(t, rec.Fields, "class")
}
