package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMServiceDisabled(t *testing.T) {
	assert.Nil(t, NewLLMService("", "llama3.2"))

	var s *LLMService
	_, err := s.Rewrite(context.Background(), "caption")
	assert.ErrorIs(t, err, ErrLLMDisabled)
}

func TestLLMServiceRewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tiny", body["model"])
		assert.Equal(t, false, body["stream"])
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "  Docked and charging.  "})
	}))
	defer srv.Close()

	s := NewLLMService(srv.URL+"/", "tiny")
	require.NotNil(t, s)

	out, err := s.Rewrite(context.Background(), "Charging: Connector seated.")
	require.NoError(t, err)
	assert.Equal(t, "Docked and charging.", out)
}

func TestLLMServiceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLLMService(srv.URL, "").Rewrite(context.Background(), "x")
	assert.Error(t, err)
}
