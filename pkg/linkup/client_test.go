package linkup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestSearch_FormatsDigest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "frog anime", req.Query)
		assert.Equal(t, "standard", req.Depth)
		assert.Equal(t, "searchResults", req.OutputType)

		json.NewEncoder(w).Encode(searchResponse{
			Results: []searchResult{
				{Name: "Keroro", URL: "https://example.com/keroro", Content: "Alien frogs."},
				{Name: "Dororo", URL: "https://example.com/dororo", Content: "Not a frog."},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), withClock(fixedClock))
	digest, err := client.Search(context.Background(), "frog anime")
	require.NoError(t, err)

	expected := "Search results for 'frog anime' on 2025-06-15\n\n" +
		"Keroro\nhttps://example.com/keroro\nAlien frogs.\n\n" +
		"Dororo\nhttps://example.com/dororo\nNot a frog.\n\n"
	assert.Equal(t, expected, digest)
}

func TestSearch_CapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]searchResult, 5)
		for i := range results {
			results[i] = searchResult{Name: "Result", URL: "u", Content: "c"}
		}
		json.NewEncoder(w).Encode(searchResponse{Results: results})
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL), WithMaxResults(3), withClock(fixedClock))
	digest, err := client.Search(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(digest, "Result\n"))
}

func TestSearch_ErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "q")
	assert.ErrorContains(t, err, "status 401")
}
