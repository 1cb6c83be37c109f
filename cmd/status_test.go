package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/no-panic/callserver/internal/signaling"
)

func statusServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if statusCode != http.StatusOK {
			http.Error(w, "hub unavailable", statusCode)
			return
		}
		json.NewEncoder(w).Encode(signaling.Stats{Connections: 3, Rooms: 2})
	})
	mux.HandleFunc("/ice-servers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"urls":["stun:stun.l.google.com:19302"]},{"urls":["turn:t.example:3478"],"username":"u","credential":"p"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchReport(t *testing.T) {
	srv := statusServer(t, http.StatusOK)

	report, err := fetchReport(context.Background(), srv.Client(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, srv.URL, report.Server)
	assert.Equal(t, signaling.Stats{Connections: 3, Rooms: 2}, report.Stats)
	require.Len(t, report.ICEServers, 2)
	assert.Equal(t, "u", report.ICEServers[1].Username)
}

func TestFetchReport_Errors(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		srv := statusServer(t, http.StatusServiceUnavailable)
		_, err := fetchReport(context.Background(), srv.Client(), srv.URL)
		assert.ErrorIs(t, err, errBadStatus)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := fetchReport(context.Background(), http.DefaultClient, "localhost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server URL")
	})
}

func TestPrintReport(t *testing.T) {
	report := &serverReport{
		Server:     "http://localhost:8080",
		Stats:      signaling.Stats{Connections: 4, Rooms: 2},
		ICEServers: []iceServerEntry{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, report, true))
	assert.JSONEq(t, `{
		"server": "http://localhost:8080",
		"status": {"connections": 4, "rooms": 2},
		"iceServers": [{"urls": ["stun:stun.l.google.com:19302"]}]
	}`, buf.String())

	buf.Reset()
	require.NoError(t, printReport(&buf, report, false))
	assert.Contains(t, buf.String(), "ICE servers")
	assert.Contains(t, buf.String(), "stun:stun.l.google.com:19302")
}

func TestStatusBase(t *testing.T) {
	t.Setenv("CALLSERVER_URL", "")
	assert.Equal(t, defaultStatusURL, statusBase(""))

	t.Setenv("CALLSERVER_URL", "https://call.example")
	assert.Equal(t, "https://call.example", statusBase(""))
	assert.Equal(t, "http://127.0.0.1:9000", statusBase("http://127.0.0.1:9000"))
}
