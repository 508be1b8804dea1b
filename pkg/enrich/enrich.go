// Package enrich post-processes agent output into displayable title details.
//
// Recommendation responses carry their titles in double-asterisk bold
// markers ("**Cowboy Bebop** – 9/10"). Each bolded substring is treated
// as a candidate title and resolved against AniList. The delimiter
// convention is coupled to the format the agent prompts request; if the
// prompts change, the pattern here must follow.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/anisense/anisense/pkg/anilist"
)

const (
	// PlaceholderImage is stored when a lookup has no cover image.
	PlaceholderImage = "No image available"

	// PlaceholderDescription is stored when a lookup has no description.
	PlaceholderDescription = "No description available"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// TitleResolver resolves a free-text title to its AniList record.
// *anilist.Client satisfies it.
type TitleResolver interface {
	Search(ctx context.Context, title string) (*anilist.Lookup, error)
}

// Entry is the per-title enrichment result: either a detail record or an
// error record, never both.
type Entry struct {
	ID          int    `json:"id,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Doc maps extracted titles to their enrichment entries.
type Doc map[string]Entry

// Enricher resolves bolded titles in free text.
type Enricher struct {
	resolver TitleResolver
}

// New creates an Enricher backed by the given resolver.
func New(resolver TitleResolver) *Enricher {
	return &Enricher{resolver: resolver}
}

// Enrich extracts every **bolded** substring from text and looks each one
// up by name. Failed lookups are recorded per-title; they never fail the
// whole batch. Duplicate titles collapse to one key, last lookup wins.
func (e *Enricher) Enrich(ctx context.Context, text string) Doc {
	doc := Doc{}

	for _, match := range boldPattern.FindAllStringSubmatch(text, -1) {
		title := match[1]

		result, err := e.resolver.Search(ctx, title)
		if err != nil {
			var statusErr *anilist.StatusError
			if errors.As(err, &statusErr) {
				doc[title] = Entry{Error: fmt.Sprintf("Error fetching data: %d", statusErr.Code)}
			} else {
				doc[title] = Entry{Error: fmt.Sprintf("Error fetching data: %v", err)}
			}
			continue
		}
		if result == nil {
			// 2xx with no matching media: nothing to record for this title.
			continue
		}

		entry := Entry{
			ID:          result.ID,
			Image:       result.Image,
			Description: result.Description,
		}
		if entry.Image == "" {
			entry.Image = PlaceholderImage
		}
		if entry.Description == "" {
			entry.Description = PlaceholderDescription
		}
		doc[title] = entry
	}

	return doc
}
