package enrich

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anisense/anisense/pkg/anilist"
)

// stubResolver maps titles to canned lookups or errors.
type stubResolver struct {
	lookups map[string]*anilist.Lookup
	errs    map[string]error
	calls   []string
}

func (s *stubResolver) Search(ctx context.Context, title string) (*anilist.Lookup, error) {
	s.calls = append(s.calls, title)
	if err, ok := s.errs[title]; ok {
		return nil, err
	}
	return s.lookups[title], nil
}

func TestEnrich_ExtractsBoldedTitles(t *testing.T) {
	resolver := &stubResolver{
		lookups: map[string]*anilist.Lookup{
			"Cowboy Bebop": {ID: 1, Image: "https://img.anili.st/1.png", Description: "Space bounty hunters."},
			"Trigun":       {ID: 6, Image: "https://img.anili.st/6.png", Description: "Desert gunman."},
		},
	}
	enricher := New(resolver)

	doc := enricher.Enrich(context.Background(),
		"1. **Cowboy Bebop** – 9/10\n2. **Trigun** – 8/10\n")

	require.Len(t, doc, 2)
	assert.Equal(t, Entry{ID: 1, Image: "https://img.anili.st/1.png", Description: "Space bounty hunters."}, doc["Cowboy Bebop"])
	assert.Equal(t, Entry{ID: 6, Image: "https://img.anili.st/6.png", Description: "Desert gunman."}, doc["Trigun"])
}

func TestEnrich_Placeholders(t *testing.T) {
	resolver := &stubResolver{
		lookups: map[string]*anilist.Lookup{
			"Obscure Show": {ID: 99},
		},
	}
	enricher := New(resolver)

	doc := enricher.Enrich(context.Background(), "**Obscure Show**")

	entry := doc["Obscure Show"]
	assert.Equal(t, 99, entry.ID)
	assert.Equal(t, PlaceholderImage, entry.Image)
	assert.Equal(t, PlaceholderDescription, entry.Description)
}

func TestEnrich_StatusErrorRecordedPerTitle(t *testing.T) {
	resolver := &stubResolver{
		lookups: map[string]*anilist.Lookup{
			"Good Show": {ID: 7, Image: "i", Description: "d"},
		},
		errs: map[string]error{
			"Bad Show": &anilist.StatusError{Code: http.StatusTooManyRequests},
		},
	}
	enricher := New(resolver)

	doc := enricher.Enrich(context.Background(), "**Bad Show** and **Good Show**")

	require.Len(t, doc, 2)
	assert.Equal(t, "Error fetching data: 429", doc["Bad Show"].Error)
	assert.Equal(t, 7, doc["Good Show"].ID, "one failed lookup must not fail the batch")
}

func TestEnrich_DuplicatesCollapse(t *testing.T) {
	resolver := &stubResolver{
		lookups: map[string]*anilist.Lookup{
			"Erased": {ID: 3, Image: "i", Description: "d"},
		},
	}
	enricher := New(resolver)

	doc := enricher.Enrich(context.Background(), "**Erased** then again **Erased**")

	assert.Len(t, doc, 1)
	assert.Len(t, resolver.calls, 2, "each occurrence is looked up independently")
}

func TestEnrich_NoBoldMarkers(t *testing.T) {
	enricher := New(&stubResolver{})

	doc := enricher.Enrich(context.Background(), "no titles here")

	assert.Empty(t, doc)
}

func TestEnrich_NoMatchOmitsEntry(t *testing.T) {
	enricher := New(&stubResolver{})

	doc := enricher.Enrich(context.Background(), "**Unknown Thing**")

	assert.Empty(t, doc)
}
