package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/types"
)

func httpCheck() Request {
	check := checkFor(types.ServiceNetwork, "http", types.OpEquals)
	check.Scope = types.ScopeGlobal
	check.Region = ""
	return Request{Check: check}
}

func TestNetworkHTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	req := httpCheck()
	req.Params = map[string]any{"url": server.URL}

	result, err := networkHTTP(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	assert.Equal(t, http.StatusOK, result.Data["statusCode"])
	assert.Contains(t, result.Data, "responseTimeMs")
}

func TestNetworkHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	req := httpCheck()
	req.Params = map[string]any{"url": server.URL}

	result, err := networkHTTP(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Contains(t, result.Reason, "unexpected status code")
	assert.Equal(t, http.StatusServiceUnavailable, result.Data["statusCode"])
}

func TestNetworkHTTPBodyContains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("service healthy"))
	}))
	defer server.Close()

	t.Run("present", func(t *testing.T) {
		req := httpCheck()
		req.Params = map[string]any{"url": server.URL, "body_contains": "healthy"}

		result, err := networkHTTP(context.Background(), req, nil)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})

	t.Run("absent", func(t *testing.T) {
		req := httpCheck()
		req.Params = map[string]any{"url": server.URL, "body_contains": "degraded"}

		result, err := networkHTTP(context.Background(), req, nil)

		require.NoError(t, err)
		assert.Equal(t, types.StatusFail, result.Status)
		assert.Contains(t, result.Reason, "degraded")
	})
}

func TestNetworkHTTPConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	req := httpCheck()
	req.Params = map[string]any{"url": url, "timeout": 1}

	result, err := networkHTTP(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Contains(t, result.Observed, "failed")
}

func TestNetworkHTTPMissingURL(t *testing.T) {
	req := httpCheck()
	req.Params = map[string]any{}

	result, err := networkHTTP(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Equal(t, "url is required", result.Reason)
}

func TestNetworkPingMissingHost(t *testing.T) {
	req := httpCheck()
	req.Check.Type = "ping"
	req.Params = map[string]any{}

	result, err := networkPing(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Equal(t, "host is required", result.Reason)
}

func TestParsePingLatency(t *testing.T) {
	summary := `3 packets transmitted, 3 received, 0% packet loss, time 2003ms
rtt min/avg/max/mdev = 0.045/0.112/0.201/0.065 ms`

	latency, ok := parsePingLatency(summary)
	require.True(t, ok)
	assert.InDelta(t, 0.112, latency, 0.0001)

	perPacket := `64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time=1.23 ms
64 bytes from 10.0.0.1: icmp_seq=2 ttl=64 time=2.34 ms`

	latency, ok = parsePingLatency(perPacket)
	require.True(t, ok)
	assert.InDelta(t, 2.34, latency, 0.0001)

	_, ok = parsePingLatency("no samples here")
	assert.False(t, ok)
}
