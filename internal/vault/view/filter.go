// Package view derives the visible subset of the media list from the
// user-chosen filters. Filters compose in a fixed precedence and each one is
// the identity transform when it has no active criterion, so applying the
// same filter set twice yields the same result as once.
package view

import (
	"strings"

	"github.com/ervall/mediavault/internal/database"
)

// GenreAll is the sentinel genre meaning "no genre restriction".
const GenreAll = "All"

// Filter is the composed view restriction.
//
// Precedence is fixed: an active family scope overrides genre and search
// entirely (the scope lock), then genre narrows, then search narrows.
type Filter struct {
	// FamilyID restricts the view to one version family: the video with
	// this id plus its child versions. Linked audio belongs to the audio
	// line, not the grid, and stays out of the scoped set.
	FamilyID *uint

	// Genre keeps only exact (case-sensitive) genre matches. Empty or
	// GenreAll means no restriction.
	Genre string

	// Query keeps items whose title (or filename, when the title is
	// absent) contains it case-insensitively.
	Query string
}

// Apply narrows the input list. Order among survivors is input order.
func (f Filter) Apply(items []database.MediaItem) []database.MediaItem {
	if f.FamilyID != nil {
		return familyScope(items, *f.FamilyID)
	}

	out := items
	if f.Genre != "" && f.Genre != GenreAll {
		out = keep(out, func(item database.MediaItem) bool {
			return item.Genre != nil && *item.Genre == f.Genre
		})
	}
	if f.Query != "" {
		query := strings.ToLower(f.Query)
		out = keep(out, func(item database.MediaItem) bool {
			if item.Title != nil && strings.Contains(strings.ToLower(*item.Title), query) {
				return true
			}
			return strings.Contains(strings.ToLower(item.Filename), query)
		})
	}
	return out
}

// familyScope keeps exactly the item with the given id plus every video
// whose link points at it.
func familyScope(items []database.MediaItem, familyID uint) []database.MediaItem {
	return keep(items, func(item database.MediaItem) bool {
		if item.ID == familyID {
			return true
		}
		return item.IsVideo() && item.RelatedToID != nil && *item.RelatedToID == familyID
	})
}

func keep(items []database.MediaItem, pred func(database.MediaItem) bool) []database.MediaItem {
	out := make([]database.MediaItem, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// GenreOptions returns the selectable genres for the given video list: the
// sentinel first, then each distinct non-empty genre in first-appearance
// order. An empty list still yields the sentinel.
func GenreOptions(videos []database.MediaItem) []string {
	options := []string{GenreAll}
	seen := make(map[string]bool)
	for _, video := range videos {
		if video.Genre == nil || *video.Genre == "" {
			continue
		}
		if !seen[*video.Genre] {
			seen[*video.Genre] = true
			options = append(options, *video.Genre)
		}
	}
	return options
}
