package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"providerpulse/internal/config"
	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/shared/testutil"
	ws "providerpulse/internal/websocket"
	"providerpulse/pkg/contracts/events"
)

func TestWebSocketHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := ws.NewHub(logger)
	hub.Start()
	defer hub.Stop()

	handler := NewWebSocketHandler(hub, config.Default().WebSocket, []string{"http://allowed.example"}, logger, apierrors.NewErrorHandler(logger, false))
	srv := httptest.NewServer(handler)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("rejects foreign origin", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("plain request gets a problem response", func(t *testing.T) {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, apierrors.CodeWebSocket, body["error_code"])
		assert.Equal(t, apierrors.TypeWebSocketUpgrade, body["type"])
	})

	t.Run("streams events", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://allowed.example"}})
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var msg events.WebSocketMessage
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, events.MessageTypeConnect, msg.Type)

		hub.Publish(context.Background(), events.MessageTypeDatasetLoaded, events.DatasetEvent{})
		_, data, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, events.MessageTypeDatasetLoaded, msg.Type)
	})
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := ws.NewHub(logger)

	scrape := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# HELP pulse_up\n"))
	})

	rec := httptest.NewRecorder()
	NewMetricsHandler(scrape, hub).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pulse_up")

	rec = httptest.NewRecorder()
	NewMetricsHandler(nil, hub).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewMetricsHandler(nil, hub).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/websocket", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["active_clients"])
}
