package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcrm/backend/internal/interfaces/http/dto"
)

func TestAutoSyncHandler_StatusDefaults(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/auto-sync", "")

	require.Equal(t, http.StatusOK, w.Code)
	status := decodeData[dto.AutoSyncStatusResponse](t, resp)
	assert.False(t, status.IsRunning)
	assert.Equal(t, 60, status.ProductSyncIntervalMinutes)
	assert.Equal(t, 30, status.StockUpdateIntervalMinutes)
	assert.True(t, status.ProductSyncEnabled)
}

func TestAutoSyncHandler_StartStop(t *testing.T) {
	env := newTestEnv(t)
	env.configureWildberries(t)

	w, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auto-sync/start", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeData[dto.AutoSyncStatusResponse](t, resp).IsRunning)

	w, resp = doRequest(t, env.router, http.MethodPost, "/api/v1/auto-sync/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeData[dto.AutoSyncStatusResponse](t, resp).IsRunning)

	w, resp = doRequest(t, env.router, http.MethodGet, "/api/v1/auto-sync", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeData[dto.AutoSyncStatusResponse](t, resp)
	assert.False(t, status.IsRunning)
	assert.Nil(t, status.NextStockUpdateAt)
}

func TestAutoSyncHandler_StopWhenNotRunning(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auto-sync/stop", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeAutoSyncNotRunning, resp.Error.Code)
}

func TestAutoSyncHandler_UpdateIntervals(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doRequest(t, env.router, http.MethodPut, "/api/v1/auto-sync/intervals",
		`{"product_sync_interval_minutes":0,"stock_update_interval_minutes":15}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decodeData[dto.AutoSyncStatusResponse](t, resp)
	assert.Equal(t, 0, status.ProductSyncIntervalMinutes)
	assert.Equal(t, 15, status.StockUpdateIntervalMinutes)
	assert.False(t, status.ProductSyncEnabled)
	assert.False(t, status.IsRunning, "updating intervals does not start the scheduler")
}

func TestAutoSyncHandler_UpdateIntervals_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero stock interval", `{"product_sync_interval_minutes":10,"stock_update_interval_minutes":0}`},
		{"negative product interval", `{"product_sync_interval_minutes":-1,"stock_update_interval_minutes":10}`},
		{"missing stock interval", `{"product_sync_interval_minutes":10}`},
		{"stock interval above one week", `{"product_sync_interval_minutes":10,"stock_update_interval_minutes":200000000}`},
		{"product interval above one week", `{"product_sync_interval_minutes":10081,"stock_update_interval_minutes":30}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doRequest(t, env.router, http.MethodPut, "/api/v1/auto-sync/intervals", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		})
	}
}
