package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cases/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "abc"},
		})
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)

	resp, err := api.Get("/cases/abc")
	require.NoError(t, err)

	var c Case
	require.NoError(t, json.Unmarshal(resp.Data, &c))
	assert.Equal(t, "abc", c.ID)
}

func TestAPIClient_Post_SendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "estoppel", req.Query)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": SearchResponse{Mode: "hybrid"},
		})
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)

	resp, err := api.Post("/search", SearchRequest{Query: "estoppel"})
	require.NoError(t, err)

	var searchResp SearchResponse
	require.NoError(t, json.Unmarshal(resp.Data, &searchResp))
	assert.Equal(t, "hybrid", searchResp.Mode)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "case not found",
			"code":  "NOT_FOUND",
		})
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)

	_, err := api.Get("/cases/missing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "case not found", apiErr.Message)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestAPIClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)

	_, err := api.Get("/search")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream timeout")
}

func TestNewAPIClientWithCmd_EnvFallback(t *testing.T) {
	os.Setenv(envAPIURL, "http://example.test:9999")
	defer os.Unsetenv(envAPIURL)

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9999", api.baseURL)
}

func TestNewAPIClientWithCmd_Default(t *testing.T) {
	os.Unsetenv(envAPIURL)

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)
}

func TestParseMetadata(t *testing.T) {
	meta, err := parseMetadata([]string{"reporter=PLD", "year=2019"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"reporter": "PLD", "year": "2019"}, meta)

	_, err = parseMetadata([]string{"no-equals"})
	assert.Error(t, err)

	meta, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)
}
