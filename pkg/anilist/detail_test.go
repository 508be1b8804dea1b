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

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		english  *string
		romaji   *string
		expected string
	}{
		{"english preferred", strPtr("Cowboy Bebop"), strPtr("Kaubōi Bebappu"), "Cowboy Bebop"},
		{"romaji fallback", nil, strPtr("Kaubōi Bebappu"), "Kaubōi Bebappu"},
		{"empty english falls back", strPtr(""), strPtr("Kaubōi Bebappu"), "Kaubōi Bebappu"},
		{"both missing", nil, nil, "Unknown Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeTitle(tt.english, tt.romaji))
		})
	}
}

func TestFormatStartDate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day *int
		expected         string
	}{
		{"full date", intPtr(1998), intPtr(4), intPtr(3), "1998-04-03"},
		{"year only", intPtr(2020), nil, nil, "2020-??-??"},
		{"month only", nil, intPtr(12), nil, "??-12-??"},
		{"all missing", nil, nil, nil, "??-??-??"},
		{"single digit day padded", intPtr(2005), intPtr(10), intPtr(9), "2005-10-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatStartDate(tt.year, tt.month, tt.day))
		})
	}
}

func TestFirstParagraph(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single paragraph", "A bounty hunter crew.", "A bounty hunter crew."},
		{"double break cut", "First part.<br><br>Second part.", "First part."},
		{"plain newline cut", "First line.\nSecond line.", "First line."},
		{"whitespace trimmed", "  Padded text.  <br><br>More.", "Padded text."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstParagraph(tt.input))
		})
	}
}

// detailFixture builds a raw GraphQL response body for the detail query.
func detailFixture(media map[string]any) []byte {
	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{"Media": media},
	})
	return body
}

func TestFetchDetail_Normalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(1), req.Variables["id"].(float64))

		w.Header().Set("Content-Type", "application/json")
		w.Write(detailFixture(map[string]any{
			"title":           map[string]any{"romaji": "Kaubōi Bebappu", "english": nil},
			"startDate":       map[string]any{"year": 1998, "month": 4, "day": nil},
			"countryOfOrigin": "JP",
			"genres":          []string{"Action", "Sci-Fi"},
			"duration":        24,
			"episodes":        26,
			"tags": []map[string]any{
				{"name": "Space"}, {"name": "Crime"}, {"name": "Episodic"},
				{"name": "Noir"}, {"name": "Tragedy"}, {"name": "Philosophy"},
			},
			"description": "The year 2071.<br><br>Bounty hunters roam.",
			"recommendations": map[string]any{
				"edges": []map[string]any{
					{"node": map[string]any{
						"rating": 120,
						"mediaRecommendation": map[string]any{
							"title":  map[string]any{"english": "Samurai Champloo"},
							"genres": []string{"Action"},
						},
					}},
					{"node": map[string]any{
						"rating": 80,
						"mediaRecommendation": map[string]any{
							"title":  map[string]any{"english": nil},
							"genres": []string{"Drama"},
						},
					}},
				},
			},
		}))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	detail, err := client.FetchDetail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Kaubōi Bebappu", detail.Title)
	assert.Equal(t, "The year 2071.", detail.Description)
	assert.Equal(t, "1998-04-??", detail.StartDate)
	assert.Equal(t, "JP", detail.CountryOfOrigin)
	assert.Equal(t, 24, detail.DurationMinutes)
	assert.Equal(t, 26, detail.Episodes)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, detail.Genres)
	assert.Len(t, detail.Tags, 5, "tags are capped at 5")
	assert.Equal(t, "Philosophy", detail.Tags[4])

	require.Len(t, detail.TopRecommendations, 1, "entries without an English title are dropped")
	assert.Equal(t, "Samurai Champloo", detail.TopRecommendations[0].Title)
	assert.Equal(t, 120, detail.TopRecommendations[0].Score)
}

func TestFetchDetail_EmptyMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(detailFixture(map[string]any{}))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	detail, err := client.FetchDetail(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "Unknown Title", detail.Title)
	assert.Equal(t, "", detail.Description)
	assert.Equal(t, "??-??-??", detail.StartDate)
	assert.Equal(t, "Unknown", detail.CountryOfOrigin)
	assert.Equal(t, 0, detail.DurationMinutes)
	assert.Equal(t, 0, detail.Episodes)
	assert.Empty(t, detail.TopRecommendations)
}

func TestFetchDetail_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchDetail(context.Background(), 1)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}
