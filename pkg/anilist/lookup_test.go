package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Cowboy Bebop", req.Variables["search"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"Media": map[string]any{
					"id":          1,
					"coverImage":  map[string]any{"large": "https://img.anili.st/1.png"},
					"description": "Bounty hunters in space.",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Search(context.Background(), "Cowboy Bebop")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.ID)
	assert.Equal(t, "https://img.anili.st/1.png", result.Image)
	assert.Equal(t, "Bounty hunters in space.", result.Description)
}

func TestSearch_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"Media": nil},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Search(context.Background(), "Nonexistent Show")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestSearch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Search(context.Background(), "anything")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}
