package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecodesTransactionArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "coffee 4.50", req.Input)
		assert.Contains(t, req.Instruction, "JSON array")

		output := `[{"type":"EXPENSE","amount":"4.50","description":"coffee","date":"2025-08-30"}]`
		_ = json.NewEncoder(w).Encode(generateResponse{Output: output})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, APIKey: "test-key"})
	parsed, err := client.Parse(context.Background(), "coffee 4.50")
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "EXPENSE", parsed[0].Type)
	assert.Equal(t, "4.50", parsed[0].Amount)
	assert.Equal(t, "2025-08-30", parsed[0].Date)
}

func TestParseRejectsNonArrayOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Output: "sorry, I cannot help with that"})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Parse(context.Background(), "coffee")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestParseRejectsUnknownType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		output := `[{"type":"TRANSFER","amount":"1","description":"x","date":"2025-01-01"}]`
		_ = json.NewEncoder(w).Encode(generateResponse{Output: output})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestParseSurfacesUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	_, err := client.Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestParseUnreachableEndpoint(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.Parse(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnreachable)
}
