package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelanes/game-server/api/handlers"
	apiservices "github.com/spicelanes/game-server/api/services"
	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database/memstore"
	"github.com/spicelanes/game-server/spicelanes/game"
	"github.com/spicelanes/game-server/spicelanes/worldapp"
)

const testAddr = "0x1111111111111111111111111111111111111111"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := memstore.New()
	engine := game.New(store)
	require.NoError(t, engine.SeedUniverse(context.Background()))

	webApp := &handlers.WebApp{
		Engine:    engine,
		ShipIndex: apiservices.NewShipIndex(store.Ships()),
		Verifier:  worldapp.NewVerifier(spicelanes.WorldAppConfig{}, store),
		Payments:  worldapp.NewPayments(spicelanes.WorldAppConfig{}, store),
		Version:   "test",
	}
	return New(spicelanes.ServerConfig{Host: "127.0.0.1", Port: 0}, webApp)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func onboard(t *testing.T, srv *Server) {
	t.Helper()
	resp, _ := doJSON(t, srv, "POST", "/api/onboard", map[string]any{
		"address": testAddr, "ship_name": "Desert Wind",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := doJSON(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestOnboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	onboard(t, srv)

	resp, body := doJSON(t, srv, "GET", "/api/players/"+testAddr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["registered"])
	assert.Equal(t, "1500000000000000000000", data["credits"])

	// Precondition failures map to 409.
	resp, body = doJSON(t, srv, "POST", "/api/onboard", map[string]any{
		"address": testAddr, "ship_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "AlreadyRegistered", errObj["code"])

	// Validation failures map to 400.
	resp, _ = doJSON(t, srv, "POST", "/api/onboard", map[string]any{
		"address": "0x2222", "ship_name": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReadEndpoints(t *testing.T) {
	srv := newTestServer(t)
	onboard(t, srv)

	resp, body := doJSON(t, srv, "GET", "/api/planets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 5)

	resp, _ = doJSON(t, srv, "GET", "/api/planets/999", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv, "GET", "/api/travel/cost?from=1&to=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cost := body["data"].(map[string]any)
	assert.Greater(t, cost["spice_cost"].(float64), float64(0))

	resp, body = doJSON(t, srv, "GET", "/api/ships/prices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 4)

	resp, body = doJSON(t, srv, "GET", "/api/mining", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(60), body["data"].(map[string]any)["cooldown_seconds"])

	resp, body = doJSON(t, srv, "GET", "/api/players/"+testAddr+"/ships", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ships := body["data"].([]any)
	require.Len(t, ships, 1)

	shipID := int64(ships[0].(map[string]any)["id"].(float64))
	resp, _ = doJSON(t, srv, "GET", fmt.Sprintf("/api/ships/%d", shipID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, srv, "GET", "/api/ships/search?q=desert", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 1)
}

func TestTradeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	onboard(t, srv)

	resp, body := doJSON(t, srv, "GET", "/api/market/quote?planet_id=1&resource=3&resource_to_credits=true&amount_in=500", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quoted := body["data"].(map[string]any)["amount_out"].(string)

	resp, body = doJSON(t, srv, "POST", "/api/market/trade", map[string]any{
		"address":             testAddr,
		"planet_id":           1,
		"resource":            3,
		"resource_to_credits": true,
		"amount_in":           "500",
		"min_amount_out":      quoted,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, quoted, data["amount_out"])

	// A pool moved by the first trade no longer fills the same quote.
	resp, body = doJSON(t, srv, "POST", "/api/market/trade", map[string]any{
		"address":             testAddr,
		"planet_id":           1,
		"resource":            3,
		"resource_to_credits": true,
		"amount_in":           "500",
		"min_amount_out":      quoted,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SlippageExceeded", body["error"].(map[string]any)["code"])
}

func TestTravelEndpoints(t *testing.T) {
	srv := newTestServer(t)
	onboard(t, srv)

	resp, body := doJSON(t, srv, "POST", "/api/travel", map[string]any{
		"address": testAddr, "planet_id": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["traveling"])

	// Wall clock has not advanced past the trip end.
	resp, body = doJSON(t, srv, "POST", "/api/travel/complete", map[string]any{
		"address": testAddr,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "StillEnRoute", body["error"].(map[string]any)["code"])
}

func TestWorldAppEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, "POST", "/api/verify-world-id", map[string]any{
		"merkle_root":    "0xabc",
		"nullifier_hash": "0xdef",
		"proof":          "0x123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, false, data["verified"])

	resp, _ = doJSON(t, srv, "POST", "/api/verify-world-id", map[string]any{
		"merkle_root": "0xabc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv, "POST", "/api/initiate-payment", map[string]any{
		"address": testAddr,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reference := body["data"].(map[string]any)["reference"].(string)

	resp, body = doJSON(t, srv, "POST", "/api/verify-payment", map[string]any{
		"transaction_id": "0xtx",
		"reference":      reference,
		"amount":         "0.1",
		"token":          "WLD",
		"status":         "success",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["success"])

	resp, _ = doJSON(t, srv, "POST", "/api/verify-payment", map[string]any{
		"reference": "unknown", "status": "success",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
