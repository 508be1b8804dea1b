package anilist

import (
	"context"
)

// lookupQuery resolves a title search to the id, cover image, and
// description used by title enrichment.
const lookupQuery = `
query ($search: String) {
  Media(search: $search, type: ANIME) {
    id
    coverImage {
      large
    }
    description(asHtml: false)
  }
}`

// Lookup is the raw by-search result for one title.
type Lookup struct {
	ID          int
	Image       string
	Description string
}

type lookupResponse struct {
	Data struct {
		Media *struct {
			ID         int `json:"id"`
			CoverImage struct {
				Large string `json:"large"`
			} `json:"coverImage"`
			Description string `json:"description"`
		} `json:"Media"`
	} `json:"data"`
}

// Search resolves a free-text title to its AniList record.
// A non-2xx response surfaces as *StatusError; a 2xx response with no
// matching media returns (nil, nil).
func (c *Client) Search(ctx context.Context, title string) (*Lookup, error) {
	var raw lookupResponse
	if err := c.post(ctx, lookupQuery, map[string]any{"search": title}, &raw); err != nil {
		return nil, err
	}

	media := raw.Data.Media
	if media == nil {
		return nil, nil
	}

	return &Lookup{
		ID:          media.ID,
		Image:       media.CoverImage.Large,
		Description: media.Description,
	}, nil
}
