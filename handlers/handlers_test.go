package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/jobs"
	"github.com/niveshipo/backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineGenerator fails every upstream call, which exercises the degraded
// paths: endpoints still answer with fallback content
type offlineGenerator struct{}

func (offlineGenerator) GenerateGrounded(context.Context, string, string) (*services.GenerationResult, error) {
	return nil, errors.New("offline")
}

func (offlineGenerator) GenerateChat(context.Context, string, string, string, []services.ChatMessage) (*services.GenerationResult, error) {
	return nil, errors.New("offline")
}

func (offlineGenerator) Transcribe(context.Context, string) (string, error) {
	return "", errors.New("offline")
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	generator := offlineGenerator{}
	listingService := services.NewListingService(generator, "flash-model")
	riskService := services.NewRiskService(generator, "pro-model")
	chatService := services.NewChatService(generator, "flash-model")
	communityService, err := services.NewCommunityService(db)
	require.NoError(t, err)

	syncJob := jobs.NewMarketSyncJob(listingService, time.Hour)

	listingHandler := NewListingHandler(listingService, syncJob)
	riskHandler := NewRiskHandler(riskService, listingService)
	chatHandler := NewChatHandler(chatService)
	communityHandler := NewCommunityHandler(communityService)
	marketHandler := NewMarketHandler(listingService)
	metricsHandler := NewMetricsHandler(listingService.Metrics, riskService.Metrics)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/listings", listingHandler.GetListings)
	api.Post("/listings/refresh", listingHandler.RefreshListings)
	api.Get("/listings/:symbol", listingHandler.GetListingBySymbol)
	api.Get("/listings/:symbol/risk", riskHandler.GetLatestAnalysis)
	api.Post("/listings/:symbol/risk", riskHandler.AnalyzeListing)
	api.Get("/market/indices", marketHandler.GetMarketIndices)
	api.Get("/market/news", marketHandler.GetMarketNews)
	api.Post("/chat", chatHandler.Chat)
	api.Post("/chat/transcribe", chatHandler.Transcribe)
	api.Get("/community", communityHandler.GetMessages)
	api.Post("/community", communityHandler.PostMessage)
	api.Get("/metrics", metricsHandler.GetMetrics)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp, envelope
}

func TestGetListingsEnvelope(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/listings", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)

	var listings []map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &listings))
	require.NotEmpty(t, listings)
	assert.NotEmpty(t, listings[0]["symbol"])
	assert.NotEmpty(t, listings[0]["risk_level"])
}

func TestGetListingsQueryFilter(t *testing.T) {
	app := newTestApp(t)

	_, envelope := doRequest(t, app, http.MethodGet, "/api/v1/listings?q=zzzznotfound", nil)

	var listings []map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &listings))
	assert.Empty(t, listings)
}

func TestGetListingBySymbol(t *testing.T) {
	app := newTestApp(t)

	t.Run("known symbol", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/listings/TECHVEDA", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, envelope.Success)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/listings/NOPE", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.False(t, envelope.Success)
		assert.Equal(t, "Listing not found", envelope.Error)
	})
}

func TestRefreshListingsAlwaysSucceeds(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/listings/refresh", nil)

	// upstream is offline, yet the refresh serves fallback content
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)

	var listings []map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &listings))
	assert.NotEmpty(t, listings)
}

func TestAnalyzeListing(t *testing.T) {
	app := newTestApp(t)

	t.Run("unknown symbol", func(t *testing.T) {
		resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/listings/NOPE/risk", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("without body uses default weights", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/listings/TECHVEDA/risk", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, envelope.Success)

		var analysis map[string]any
		require.NoError(t, json.Unmarshal(envelope.Data, &analysis))
		assert.NotEmpty(t, analysis["summary"])
		assert.EqualValues(t, 50, analysis["suitability_score"])
	})

	t.Run("with custom weights", func(t *testing.T) {
		body := map[string]int{"fundamentals": 60, "valuation": 20, "sentiment": 20}
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/listings/TECHVEDA/risk", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, envelope.Success)
	})
}

func TestGetLatestAnalysis(t *testing.T) {
	app := newTestApp(t)

	t.Run("before any analysis", func(t *testing.T) {
		resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/listings/TECHVEDA/risk", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("after an analysis", func(t *testing.T) {
		doRequest(t, app, http.MethodPost, "/api/v1/listings/TECHVEDA/risk", nil)

		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/listings/TECHVEDA/risk", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, envelope.Success)
	})
}

func TestChatEndpoint(t *testing.T) {
	app := newTestApp(t)

	t.Run("empty message rejected", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/chat", map[string]string{"message": "  "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, envelope.Success)
	})

	t.Run("offline upstream still answers", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/chat", map[string]string{"message": "hello"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, envelope.Success)

		var result map[string]any
		require.NoError(t, json.Unmarshal(envelope.Data, &result))
		assert.NotEmpty(t, result["text"])
	})
}

func TestTranscribeRequiresAudio(t *testing.T) {
	app := newTestApp(t)

	resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/chat/transcribe", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestCommunityEndpoints(t *testing.T) {
	app := newTestApp(t)

	t.Run("board starts seeded", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/community", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var messages []map[string]any
		require.NoError(t, json.Unmarshal(envelope.Data, &messages))
		assert.Len(t, messages, 2)
	})

	t.Run("post then read back", func(t *testing.T) {
		body := map[string]string{"text": "GMP tracker would be great", "type": "Suggestion"}
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/community", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, envelope.Success)

		_, listEnvelope := doRequest(t, app, http.MethodGet, "/api/v1/community", nil)
		var messages []map[string]any
		require.NoError(t, json.Unmarshal(listEnvelope.Data, &messages))
		require.Len(t, messages, 3)
		assert.Equal(t, "GMP tracker would be great", messages[0]["text"])
	})

	t.Run("empty text rejected", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodPost, "/api/v1/community", map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, envelope.Success)
	})
}

func TestMarketEndpoints(t *testing.T) {
	app := newTestApp(t)

	t.Run("indices", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/market/indices", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var indices []map[string]any
		require.NoError(t, json.Unmarshal(envelope.Data, &indices))
		assert.Len(t, indices, 4)
	})

	t.Run("news serves fallback ticker", func(t *testing.T) {
		resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/market/news", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var news []map[string]any
		require.NoError(t, json.Unmarshal(envelope.Data, &news))
		assert.NotEmpty(t, news)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	doRequest(t, app, http.MethodGet, "/api/v1/listings", nil)
	resp, envelope := doRequest(t, app, http.MethodGet, "/api/v1/metrics", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshots []map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &snapshots))
	require.Len(t, snapshots, 2)
	assert.Equal(t, "Listing_Service", snapshots[0]["service_name"])
}
