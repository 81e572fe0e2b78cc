package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) ServerAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPServerAdapter(config.Adapter{
		APIURL:         srv.URL,
		RequestTimeout: 5 * time.Second,
	}, logger.Nop())
}

func TestHTTPServerAdapter_SignInGoogle(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/google", r.URL.Path)

		var req models.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "id-token", req.IDToken)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.AuthSession{Token: "session-token", User: models.User{UserID: 9}})
	})

	session, err := adapter.SignInGoogle(context.Background(), models.SignInRequest{IDToken: "id-token"})

	require.NoError(t, err)
	assert.Equal(t, "session-token", session.Token)
	assert.Equal(t, "session-token", adapter.Token(), "session token is retained for later calls")
}

func TestHTTPServerAdapter_Push_SendsBearer(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sync/push", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.PushResponse{Success: true})
	})
	adapter.SetToken("tok")

	resp, err := adapter.Push(context.Background(), models.PushRequest{ClientID: "c1"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestHTTPServerAdapter_Pull(t *testing.T) {
	t.Run("without cursor", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sync/pull", r.URL.Path)
			assert.False(t, r.URL.Query().Has("since"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(models.PullResponse{SyncedAt: time.Now().UTC()})
		})
		adapter.SetToken("tok")

		_, err := adapter.Pull(context.Background(), nil)
		require.NoError(t, err)
	})

	t.Run("with cursor", func(t *testing.T) {
		since := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)

		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, since.Format(time.RFC3339Nano), r.URL.Query().Get("since"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(models.PullResponse{
				Blocks:   []models.Block{{ID: "b1", Text: "from server", Version: 2}},
				SyncedAt: time.Now().UTC(),
			})
		})
		adapter.SetToken("tok")

		resp, err := adapter.Pull(context.Background(), &since)
		require.NoError(t, err)
		require.Len(t, resp.Blocks, 1)
		assert.Equal(t, "from server", resp.Blocks[0].Text)
	})
}

func TestHTTPServerAdapter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"server error", http.StatusInternalServerError, ErrServerUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrServerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			adapter.SetToken("tok")

			_, err := adapter.Full(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPServerAdapter_UnreachableServer(t *testing.T) {
	adapter := NewHTTPServerAdapter(config.Adapter{
		// nothing listens here
		APIURL:         "http://127.0.0.1:1",
		RequestTimeout: time.Second,
	}, logger.Nop())

	_, err := adapter.Me(context.Background())
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestHTTPServerAdapter_ResolveConflict(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sync/resolve-conflict", r.URL.Path)

		var req models.ResolveConflictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "b1-conflict-1", req.ConflictID)
		assert.Equal(t, models.ResolutionKeptServer, req.Resolution)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	})
	adapter.SetToken("tok")

	err := adapter.ResolveConflict(context.Background(), models.ResolveConflictRequest{
		ConflictID: "b1-conflict-1",
		Resolution: models.ResolutionKeptServer,
	})
	assert.NoError(t, err)
}
