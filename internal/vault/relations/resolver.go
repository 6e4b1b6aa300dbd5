// Package relations derives the one-level relationship graph from the flat
// media list: video version families (video -> child videos) and linked audio
// (audio -> the video it accompanies). The graph is a pure function of its
// input, rebuilt on every store swap, and references items by id only —
// deletions leave dangling ids, never dangling pointers.
package relations

import (
	"fmt"

	"github.com/ervall/mediavault/internal/database"
)

// Anomaly kinds. Anomalies are data quirks the resolver tolerates: it picks a
// deterministic interpretation and records what it saw, never failing.
const (
	AnomalySelfLink       = "self_link"
	AnomalyDuplicateAudio = "duplicate_linked_audio"
	AnomalyBadLinkTarget  = "bad_link_target"
)

// Anomaly records one tolerated data quirk.
type Anomaly struct {
	Kind   string
	ItemID uint
	Detail string
}

// Graph is the resolved relationship view over one input list.
type Graph struct {
	byID       map[uint]database.MediaItem
	childIDs   map[uint][]uint // video id -> child video ids, input order
	audioForID map[uint]uint   // video id -> first linked audio id
	anomalies  []Anomaly
}

// Resolve builds the graph in linear time: one pass to index items by id,
// one pass to bucket links. No per-lookup scans.
func Resolve(items []database.MediaItem) *Graph {
	g := &Graph{
		byID:       make(map[uint]database.MediaItem, len(items)),
		childIDs:   make(map[uint][]uint),
		audioForID: make(map[uint]uint),
	}

	for _, item := range items {
		g.byID[item.ID] = item
	}

	for _, item := range items {
		if item.RelatedToID == nil {
			continue
		}
		target := *item.RelatedToID

		if target == item.ID {
			g.note(AnomalySelfLink, item.ID, "item links to itself")
			continue
		}

		// A link may dangle after a parent delete; that is an accepted
		// state, not an anomaly. A link to a non-video that exists is a
		// type violation and gets recorded.
		if t, ok := g.byID[target]; ok && !t.IsVideo() {
			g.note(AnomalyBadLinkTarget, item.ID,
				fmt.Sprintf("link target %d is not a video", target))
			continue
		}

		switch item.MediaType {
		case database.MediaTypeVideo:
			g.childIDs[target] = append(g.childIDs[target], item.ID)
		case database.MediaTypeAudio:
			if _, taken := g.audioForID[target]; taken {
				g.note(AnomalyDuplicateAudio, item.ID,
					fmt.Sprintf("video %d already has linked audio", target))
				continue
			}
			g.audioForID[target] = item.ID
		}
	}

	return g
}

func (g *Graph) note(kind string, itemID uint, detail string) {
	g.anomalies = append(g.anomalies, Anomaly{Kind: kind, ItemID: itemID, Detail: detail})
}

// ChildrenOf returns the videos whose link points at the given video, in
// input order.
func (g *Graph) ChildrenOf(videoID uint) []database.MediaItem {
	ids := g.childIDs[videoID]
	if len(ids) == 0 {
		return nil
	}
	out := make([]database.MediaItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.byID[id])
	}
	return out
}

// ParentOf returns the parent version of the given video. A dangling link
// (parent deleted) resolves to not-found, without error.
func (g *Graph) ParentOf(videoID uint) (database.MediaItem, bool) {
	item, ok := g.byID[videoID]
	if !ok || item.RelatedToID == nil {
		return database.MediaItem{}, false
	}
	parent, ok := g.byID[*item.RelatedToID]
	if !ok || !parent.IsVideo() {
		return database.MediaItem{}, false
	}
	return parent, true
}

// LinkedAudioOf returns the first audio item in input order linked to the
// given video.
func (g *Graph) LinkedAudioOf(videoID uint) (database.MediaItem, bool) {
	id, ok := g.audioForID[videoID]
	if !ok {
		return database.MediaItem{}, false
	}
	return g.byID[id], true
}

// Anomalies returns the data quirks seen while resolving.
func (g *Graph) Anomalies() []Anomaly {
	return g.anomalies
}
