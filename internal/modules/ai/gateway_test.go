package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipvault/core/internal/config"
)

func compatibleProvider(endpoint string) *config.AIProvider {
	return &config.AIProvider{
		ID:           "test",
		Type:         "openai-compatible",
		APIKey:       "test-key",
		Endpoint:     endpoint,
		DefaultModel: "test-model",
		Enabled:      true,
	}
}

func TestGenerateNoProvider(t *testing.T) {
	_, err := NewGateway(nil).Generate(context.Background(), "hi", 0.2)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewGateway(compatibleProvider(srv.URL)).Generate(context.Background(), "hi", 0.2)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateUnreachableBackend(t *testing.T) {
	_, err := NewGateway(compatibleProvider("http://127.0.0.1:1")).Generate(context.Background(), "hi", 0.2)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewGateway(compatibleProvider(srv.URL)).Generate(context.Background(), "hi", 0.2)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewGateway(compatibleProvider(srv.URL)).Generate(context.Background(), "hi", 0.2)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"generated text"}}]}`))
	}))
	defer srv.Close()

	out, err := NewGateway(compatibleProvider(srv.URL)).Generate(context.Background(), "hi", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
}

func TestNormalizeCompatibleEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com", normalizeCompatibleEndpoint(""))
	assert.Equal(t, "http://localhost:8080", normalizeCompatibleEndpoint("http://localhost:8080/v1/"))
	assert.Equal(t, "http://localhost:8080", normalizeCompatibleEndpoint("http://localhost:8080"))
}
