// Package aiclient is the HTTP client for the external AI collaborator,
// which provides image-similarity retrieval, natural-language constraint
// extraction and review-based product comparison.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Expression values returned by constraint extraction.
const (
	ExpressionLess = "Less"
	ExpressionMore = "More"
)

// UpsertResult is the response of POST /upsert/.
type UpsertResult struct {
	ImageID  string         `json:"image_id"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

// RetrievedRecord is one hit from POST /retrieve/. Metadata carries the
// item_id the embedding was stored under.
type RetrievedRecord struct {
	ImageID    string         `json:"image_id"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// ItemID extracts the item reference from the record metadata.
func (r RetrievedRecord) ItemID() string {
	id, _ := r.Metadata["item_id"].(string)
	return id
}

// Constraint is the response of POST /constraint/: a catalogue filter
// extracted from a natural-language query. Expression is "Less", "More" or
// nil when the query carries no budget direction.
type Constraint struct {
	Category   string  `json:"category"`
	Budget     *int64  `json:"budget"`
	Expression *string `json:"expression"`
}

// CompareProduct is one product sent to POST /compare/.
type CompareProduct struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Reviews []string `json:"reviews"`
}

// AspectSentiment is an aspect-level summary for a compared product.
type AspectSentiment struct {
	Name      string `json:"name"`
	Sentiment string `json:"sentiment"`
}

// ComparedProduct is the per-product result of a comparison.
type ComparedProduct struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Aspects          []AspectSentiment `json:"aspects"`
	Pros             []string          `json:"pros"`
	Cons             []string          `json:"cons"`
	SatisfactionRate int               `json:"satisfaction_rate"`
	Summary          string            `json:"summary"`
}

// CompareResult is the response of POST /compare/.
type CompareResult struct {
	Products []ComparedProduct `json:"products"`
	Verdict  string            `json:"verdict,omitempty"`
}

// Client defines the operations consumed from the AI collaborator.
type Client interface {
	// Upsert stores an image embedding keyed by imageID, tagged with itemID.
	Upsert(ctx context.Context, imageID, itemID string, image []byte) (*UpsertResult, error)

	// Retrieve returns the topK most similar stored images for a query image.
	Retrieve(ctx context.Context, image []byte, topK int) ([]RetrievedRecord, error)

	// ExtractConstraint turns a natural-language query into a catalogue filter.
	ExtractConstraint(ctx context.Context, query string) (*Constraint, error)

	// Compare analyzes 2-4 products by their reviews.
	Compare(ctx context.Context, products []CompareProduct) (*CompareResult, error)

	// Delete removes a stored image embedding.
	Delete(ctx context.Context, imageID string) error
}

// client implements Client over HTTP with a fixed request timeout.
type client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new AI collaborator client.
func New(baseURL string, httpClient *http.Client, logger zerolog.Logger) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With().Str("client", "ai").Logger(),
	}
}

// upstreamError maps a transport or status failure to the domain error
// surfaced to callers.
func (c *client) upstreamError(op string, err error) error {
	c.logger.Error().Err(err).Str("op", op).Msg("AI service call failed")
	return model.NewUpstreamServiceError(fmt.Sprintf("AI service %s failed", op))
}

func (c *client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.upstreamError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return c.upstreamError(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.upstreamError(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *client) postMultipart(ctx context.Context, path string, fields map[string]string, image []byte, op string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return c.upstreamError(op, err)
		}
	}

	part, err := writer.CreateFormFile("image_bytes", "image")
	if err != nil {
		return c.upstreamError(op, err)
	}
	if _, err := part.Write(image); err != nil {
		return c.upstreamError(op, err)
	}
	if err := writer.Close(); err != nil {
		return c.upstreamError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return c.upstreamError(op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, op, out)
}

func (c *client) postJSON(ctx context.Context, path string, payload any, op string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.upstreamError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return c.upstreamError(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op, out)
}

// Upsert stores an image embedding keyed by imageID, tagged with itemID.
func (c *client) Upsert(ctx context.Context, imageID, itemID string, image []byte) (*UpsertResult, error) {
	fields := map[string]string{
		"image_id": imageID,
		"item_id":  itemID,
	}

	var result UpsertResult
	if err := c.postMultipart(ctx, "/upsert/", fields, image, "upsert", &result); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("image_id", result.ImageID).
		Str("status", result.Status).
		Msg("image embedding upserted")
	return &result, nil
}

// Retrieve returns the topK most similar stored images for a query image.
func (c *client) Retrieve(ctx context.Context, image []byte, topK int) ([]RetrievedRecord, error) {
	if topK <= 0 {
		topK = 5
	}
	fields := map[string]string{
		"top_k": strconv.Itoa(topK),
	}

	var result struct {
		Results []RetrievedRecord `json:"results"`
	}
	if err := c.postMultipart(ctx, "/retrieve/", fields, image, "retrieve", &result); err != nil {
		return nil, err
	}

	return result.Results, nil
}

// ExtractConstraint turns a natural-language query into a catalogue filter.
func (c *client) ExtractConstraint(ctx context.Context, query string) (*Constraint, error) {
	payload := map[string]string{"query": query}

	var constraint Constraint
	if err := c.postJSON(ctx, "/constraint/", payload, "constraint", &constraint); err != nil {
		return nil, err
	}

	return &constraint, nil
}

// Compare analyzes 2-4 products by their reviews.
func (c *client) Compare(ctx context.Context, products []CompareProduct) (*CompareResult, error) {
	payload := map[string]any{"products": products}

	var result CompareResult
	if err := c.postJSON(ctx, "/compare/", payload, "compare", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Delete removes a stored image embedding.
func (c *client) Delete(ctx context.Context, imageID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/record/"+imageID, nil)
	if err != nil {
		return c.upstreamError("delete", err)
	}

	return c.do(req, "delete", nil)
}
