// Package tags loads the local AniList tag snapshot.
//
// The snapshot is read once at process start and exposed read-only to the
// agent runtime. There is no remote fallback: a missing or malformed
// snapshot fails startup.
package tags

import (
	"encoding/json"
	"fmt"
	"os"
)

// snapshot mirrors the tags.json layout, itself a saved AniList
// MediaTagCollection response.
type snapshot struct {
	Data struct {
		MediaTagCollection []struct {
			Name    string `json:"name"`
			IsAdult bool   `json:"isAdult"`
		} `json:"MediaTagCollection"`
	} `json:"data"`
}

// Load reads the tag snapshot at path and returns the names of all
// non-adult tags in snapshot order. A tag without an isAdult flag is
// treated as not adult.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse tag snapshot %s: %w", path, err)
	}

	var names []string
	for _, tag := range snap.Data.MediaTagCollection {
		if tag.IsAdult {
			continue
		}
		names = append(names, tag.Name)
	}
	return names, nil
}
