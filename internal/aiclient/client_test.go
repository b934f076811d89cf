package aiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upsert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upsert/", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "img-1", r.FormValue("image_id"))
		assert.Equal(t, "prod-1", r.FormValue("item_id"))

		file, _, err := r.FormFile("image_bytes")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("image-data"), data)

		json.NewEncoder(w).Encode(map[string]any{
			"image_id": "img-1",
			"status":   "inserted",
			"metadata": map[string]any{"item_id": "prod-1"},
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	result, err := c.Upsert(context.Background(), "img-1", "prod-1", []byte("image-data"))

	require.NoError(t, err)
	assert.Equal(t, "img-1", result.ImageID)
	assert.Equal(t, "inserted", result.Status)
}

func TestClient_Retrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrieve/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3", r.FormValue("top_k"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"image_id": "img-1", "metadata": map[string]any{"item_id": "prod-1"}, "similarity": 0.93},
				{"image_id": "img-2", "metadata": map[string]any{"item_id": "prod-2"}, "similarity": 0.41},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	records, err := c.Retrieve(context.Background(), []byte("query"), 3)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "prod-1", records[0].ItemID())
	assert.Equal(t, 0.93, records[0].Similarity)
}

func TestClient_Retrieve_DefaultTopK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "5", r.FormValue("top_k"))
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	_, err := c.Retrieve(context.Background(), []byte("query"), 0)
	require.NoError(t, err)
}

func TestClient_ExtractConstraint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/constraint/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "cheap electronics", payload["query"])

		json.NewEncoder(w).Encode(map[string]any{
			"category":   "Electronics",
			"budget":     500000,
			"expression": "Less",
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	constraint, err := c.ExtractConstraint(context.Background(), "cheap electronics")

	require.NoError(t, err)
	assert.Equal(t, "Electronics", constraint.Category)
	require.NotNil(t, constraint.Budget)
	assert.Equal(t, int64(500000), *constraint.Budget)
	require.NotNil(t, constraint.Expression)
	assert.Equal(t, ExpressionLess, *constraint.Expression)
}

func TestClient_ExtractConstraint_NullFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"category":   "Clothing",
			"budget":     nil,
			"expression": nil,
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	constraint, err := c.ExtractConstraint(context.Background(), "something to wear")

	require.NoError(t, err)
	assert.Equal(t, "Clothing", constraint.Category)
	assert.Nil(t, constraint.Budget)
	assert.Nil(t, constraint.Expression)
}

func TestClient_Compare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compare/", r.URL.Path)

		var payload struct {
			Products []CompareProduct `json:"products"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Products, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{"id": "p1", "name": "Product 1", "satisfaction_rate": 85, "pros": []string{"durable"}},
				{"id": "p2", "name": "Product 2", "satisfaction_rate": 60, "cons": []string{"noisy"}},
			},
			"verdict": "Product 1 is the better pick",
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	result, err := c.Compare(context.Background(), []CompareProduct{
		{ID: "p1", Name: "Product 1", Reviews: []string{"Great"}},
		{ID: "p2", Name: "Product 2", Reviews: []string{"Loud"}},
	})

	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, 85, result.Products[0].SatisfactionRate)
	assert.Equal(t, "Product 1 is the better pick", result.Verdict)
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/record/img-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	require.NoError(t, c.Delete(context.Background(), "img-1"))
}

func TestClient_UpstreamErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, server.Client(), zerolog.Nop())

	_, err := c.ExtractConstraint(context.Background(), "anything")

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUpstreamService, domainErr.Code)
}

func TestClient_UpstreamErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL, http.DefaultClient, zerolog.Nop())

	_, err := c.Retrieve(context.Background(), []byte("query"), 3)

	require.Error(t, err)
	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeUpstreamService, domainErr.Code)
}
