package solana

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"ok"}`)
	}))
}

func unhealthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
}

func TestProbePicksHealthyEndpoint(t *testing.T) {
	down := unhealthyServer(t)
	defer down.Close()
	up := healthyServer(t)
	defer up.Close()

	m := NewMultiplexer([]string{down.URL, up.URL}, zap.NewNop())
	require.Equal(t, down.URL, m.Endpoint())

	m.Probe(context.Background())
	require.Equal(t, up.URL, m.Endpoint())
}

func TestProbeAllFailedFallsBackToFirst(t *testing.T) {
	a := unhealthyServer(t)
	defer a.Close()
	b := unhealthyServer(t)
	defer b.Close()

	m := NewMultiplexer([]string{a.URL, b.URL}, zap.NewNop())
	m.Probe(context.Background())

	require.Equal(t, a.URL, m.Endpoint())
	require.NotNil(t, m.Fastest())
}

func TestFastestBeforeProbe(t *testing.T) {
	m := NewMultiplexer([]string{"http://127.0.0.1:1", "http://127.0.0.1:2"}, zap.NewNop())
	require.NotNil(t, m.Fastest())
	require.Equal(t, "http://127.0.0.1:1", m.Endpoint())
}
