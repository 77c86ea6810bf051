package providers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExchangeRateAPIProvider_FetchRates(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2025-06-01","rates":{"USD":1,"EUR":0.92,"NGN":1550}}`))
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(time.Second, testLogger())
	p.baseURL = server.URL

	rates, err := p.FetchRates(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, "/USD", gotPath, "base currency must be uppercased in the URL")
	assert.Equal(t, 0.92, rates["EUR"])
	assert.Equal(t, 1550.0, rates["NGN"])
}

func TestExchangeRateAPIProvider_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(time.Second, testLogger())
	p.baseURL = server.URL

	_, err := p.FetchRates(context.Background(), "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExchangeRateAPIProvider_EmptyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer server.Close()

	p := NewExchangeRateAPIProvider(time.Second, testLogger())
	p.baseURL = server.URL

	_, err := p.FetchRates(context.Background(), "USD")
	require.Error(t, err)
}

func TestOpenERAPIProvider_FetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","base_code":"EUR","rates":{"USD":1.08,"EUR":1}}`))
	}))
	defer server.Close()

	p := NewOpenERAPIProvider(time.Second, testLogger())
	p.baseURL = server.URL

	rates, err := p.FetchRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.08, rates["USD"])
}

func TestOpenERAPIProvider_ErrorResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	}))
	defer server.Close()

	p := NewOpenERAPIProvider(time.Second, testLogger())
	p.baseURL = server.URL

	_, err := p.FetchRates(context.Background(), "ZZZ")
	require.Error(t, err)
}

func TestProviders_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	p := NewOpenERAPIProvider(time.Minute, testLogger())
	p.baseURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.FetchRates(ctx, "USD")
	require.Error(t, err)
}
