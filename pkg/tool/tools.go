// Package tool exposes the anisense data sources as agent-callable tools.
//
// Tools implement the langchaingo tools.Tool interface so the agent
// runtime can declare them on its agents without knowing what backs them.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/tools"

	"github.com/anisense/anisense/pkg/anilist"
	"github.com/anisense/anisense/pkg/linkup"
)

// TagsTool returns the full permitted tag catalog. The catalog is loaded
// once at startup and read-only afterward.
type TagsTool struct {
	tags []string
}

// NewTagsTool wraps a loaded tag catalog.
func NewTagsTool(tags []string) *TagsTool {
	return &TagsTool{tags: tags}
}

func (t *TagsTool) Name() string {
	return "get_tags"
}

func (t *TagsTool) Description() string {
	return "Returns every tag that exists on AniList, one per line. " +
		"Use it to verify a tag exists before searching; never invent tag names."
}

func (t *TagsTool) Call(ctx context.Context, input string) (string, error) {
	return strings.Join(t.tags, "\n"), nil
}

// AnimeDetailTool fetches the normalized detail record for one media id.
type AnimeDetailTool struct {
	client *anilist.Client
}

// NewAnimeDetailTool wraps an AniList gateway.
func NewAnimeDetailTool(client *anilist.Client) *AnimeDetailTool {
	return &AnimeDetailTool{client: client}
}

func (t *AnimeDetailTool) Name() string {
	return "get_anime_detail"
}

func (t *AnimeDetailTool) Description() string {
	return "Returns detailed information about a specific anime as JSON: title, " +
		"description, start date, genres, tags, episode count, and up to 10 " +
		"rating-sorted recommendations. Input is the numeric AniList media id."
}

func (t *AnimeDetailTool) Call(ctx context.Context, input string) (string, error) {
	id, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("input must be a numeric AniList media id, got %q", input)
	}

	detail, err := t.client.FetchDetail(ctx, id)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return "", fmt.Errorf("failed to encode detail: %w", err)
	}
	return string(data), nil
}

// WebSearchTool searches the web and returns a short result digest.
type WebSearchTool struct {
	client *linkup.Client
}

// NewWebSearchTool wraps a web search gateway.
func NewWebSearchTool(client *linkup.Client) *WebSearchTool {
	return &WebSearchTool{client: client}
}

func (t *WebSearchTool) Name() string {
	return "search_web"
}

func (t *WebSearchTool) Description() string {
	return "Searches the web for anime information. Input is a free-text query; " +
		"the result is a digest of the top matches with name, URL, and snippet."
}

func (t *WebSearchTool) Call(ctx context.Context, input string) (string, error) {
	return t.client.Search(ctx, input)
}

var (
	_ tools.Tool = (*TagsTool)(nil)
	_ tools.Tool = (*AnimeDetailTool)(nil)
	_ tools.Tool = (*WebSearchTool)(nil)
)
