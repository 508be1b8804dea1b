package anilist

import (
	"context"
	"fmt"
	"strings"
)

// detailQuery is the by-id media detail query. Recommendations are
// rating-sorted and capped at 10 edges upstream.
const detailQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    title { romaji english }
    startDate { day month year }
    countryOfOrigin
    genres
    duration
    episodes
    tags { name }
    description(asHtml: false)
    recommendations(perPage: 10, sort: RATING_DESC) {
      edges {
        node {
          rating
          mediaRecommendation {
            title { english }
            genres
          }
        }
      }
    }
  }
}`

// Detail is the normalized anime detail record.
type Detail struct {
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	StartDate          string           `json:"start_date"`
	CountryOfOrigin    string           `json:"country_of_origin"`
	DurationMinutes    int              `json:"duration_minutes"`
	Episodes           int              `json:"episodes"`
	Genres             []string         `json:"genres"`
	Tags               []string         `json:"tags"`
	TopRecommendations []Recommendation `json:"top_recommendations"`
}

// Recommendation is one rating-scored related title.
type Recommendation struct {
	Title  string   `json:"title"`
	Score  int      `json:"score"`
	Genres []string `json:"genres"`
}

// detailResponse mirrors the raw GraphQL response. Nullable upstream
// fields are pointers so that absence is distinguishable from zero.
type detailResponse struct {
	Data struct {
		Media struct {
			Title struct {
				Romaji  *string `json:"romaji"`
				English *string `json:"english"`
			} `json:"title"`
			StartDate struct {
				Day   *int `json:"day"`
				Month *int `json:"month"`
				Year  *int `json:"year"`
			} `json:"startDate"`
			CountryOfOrigin string   `json:"countryOfOrigin"`
			Genres          []string `json:"genres"`
			Duration        int      `json:"duration"`
			Episodes        int      `json:"episodes"`
			Tags            []struct {
				Name string `json:"name"`
			} `json:"tags"`
			Description     string `json:"description"`
			Recommendations struct {
				Edges []struct {
					Node struct {
						Rating              int `json:"rating"`
						MediaRecommendation struct {
							Title struct {
								English *string `json:"english"`
							} `json:"title"`
							Genres []string `json:"genres"`
						} `json:"mediaRecommendation"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"recommendations"`
		} `json:"Media"`
	} `json:"data"`
}

// FetchDetail retrieves the normalized detail record for a media id.
// Missing upstream fields degrade to placeholders; they never fail the
// lookup. Network errors and non-2xx statuses are returned to the caller.
func (c *Client) FetchDetail(ctx context.Context, mediaID int) (*Detail, error) {
	var raw detailResponse
	if err := c.post(ctx, detailQuery, map[string]any{"id": mediaID}, &raw); err != nil {
		return nil, err
	}

	media := raw.Data.Media

	country := media.CountryOfOrigin
	if country == "" {
		country = "Unknown"
	}

	tagNames := make([]string, 0, 5)
	for _, tag := range media.Tags {
		if len(tagNames) == 5 {
			break
		}
		tagNames = append(tagNames, tag.Name)
	}

	var recs []Recommendation
	for _, edge := range media.Recommendations.Edges {
		rec := edge.Node.MediaRecommendation
		// Entries without an English title are dropped, not substituted.
		if rec.Title.English == nil || *rec.Title.English == "" {
			continue
		}
		recs = append(recs, Recommendation{
			Title:  *rec.Title.English,
			Score:  edge.Node.Rating,
			Genres: rec.Genres,
		})
	}

	return &Detail{
		Title:              normalizeTitle(media.Title.English, media.Title.Romaji),
		Description:        firstParagraph(media.Description),
		StartDate:          formatStartDate(media.StartDate.Year, media.StartDate.Month, media.StartDate.Day),
		CountryOfOrigin:    country,
		DurationMinutes:    media.Duration,
		Episodes:           media.Episodes,
		Genres:             media.Genres,
		Tags:               tagNames,
		TopRecommendations: recs,
	}, nil
}

// normalizeTitle prefers the English title, falls back to romaji, then
// to the "Unknown Title" placeholder.
func normalizeTitle(english, romaji *string) string {
	if english != nil && *english != "" {
		return *english
	}
	if romaji != nil {
		return *romaji
	}
	return "Unknown Title"
}

// firstParagraph collapses double HTML line breaks to a newline and
// keeps the text before the first one, trimmed. Empty input stays empty.
func firstParagraph(description string) string {
	collapsed := strings.ReplaceAll(description, "<br><br>", "\n")
	first, _, _ := strings.Cut(collapsed, "\n")
	return strings.TrimSpace(first)
}

// formatStartDate renders year-month-day with each component defaulting
// to "??" independently. Month and day are zero-padded to width 2.
func formatStartDate(year, month, day *int) string {
	return fmt.Sprintf("%s-%s-%s", datePart(year, 0), datePart(month, 2), datePart(day, 2))
}

func datePart(value *int, width int) string {
	if value == nil {
		return "??"
	}
	if width > 0 {
		return fmt.Sprintf("%0*d", width, *value)
	}
	return fmt.Sprintf("%d", *value)
}
