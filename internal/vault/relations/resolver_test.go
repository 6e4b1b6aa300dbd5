package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ervall/mediavault/internal/database"
)

func ref(id uint) *uint { return &id }

func strp(s string) *string { return &s }

// sampleList is the canonical three item scenario: a parent video, a child
// version and a linked soundtrack.
func sampleList() []database.MediaItem {
	return []database.MediaItem{
		{ID: 1, Filename: "v1.mp4", MediaType: database.MediaTypeVideo, Genre: strp("Synth")},
		{ID: 2, Filename: "v2.mp4", MediaType: database.MediaTypeVideo, RelatedToID: ref(1), Genre: strp("Synth")},
		{ID: 3, Filename: "a1.mp3", MediaType: database.MediaTypeAudio, RelatedToID: ref(1)},
	}
}

func TestResolveSample(t *testing.T) {
	g := Resolve(sampleList())

	children := g.ChildrenOf(1)
	require.Len(t, children, 1)
	assert.Equal(t, uint(2), children[0].ID)

	audio, ok := g.LinkedAudioOf(1)
	require.True(t, ok)
	assert.Equal(t, uint(3), audio.ID)

	parent, ok := g.ParentOf(2)
	require.True(t, ok)
	assert.Equal(t, uint(1), parent.ID)

	_, ok = g.ParentOf(1)
	assert.False(t, ok)

	assert.Empty(t, g.Anomalies())
}

func TestChildrenMatchExactlyAndKeepInputOrder(t *testing.T) {
	items := []database.MediaItem{
		{ID: 5, MediaType: database.MediaTypeVideo},
		{ID: 7, MediaType: database.MediaTypeVideo, RelatedToID: ref(5)},
		{ID: 2, MediaType: database.MediaTypeVideo, RelatedToID: ref(5)},
		{ID: 9, MediaType: database.MediaTypeVideo, RelatedToID: ref(5)},
		{ID: 4, MediaType: database.MediaTypeVideo},
	}

	g := Resolve(items)
	children := g.ChildrenOf(5)
	require.Len(t, children, 3)
	assert.Equal(t, uint(7), children[0].ID)
	assert.Equal(t, uint(2), children[1].ID)
	assert.Equal(t, uint(9), children[2].ID)
	assert.Empty(t, g.ChildrenOf(4))
}

func TestChildrenIndependentOfListPermutation(t *testing.T) {
	items := sampleList()
	permuted := []database.MediaItem{items[2], items[0], items[1]}

	for _, list := range [][]database.MediaItem{items, permuted} {
		g := Resolve(list)
		children := g.ChildrenOf(1)
		require.Len(t, children, 1)
		assert.Equal(t, uint(2), children[0].ID)

		audio, ok := g.LinkedAudioOf(1)
		require.True(t, ok)
		assert.Equal(t, uint(3), audio.ID)
	}
}

func TestDeletedParentLeavesDanglingLink(t *testing.T) {
	// Parent (id 1) deleted: the child keeps its link but the parent no
	// longer resolves, without error.
	items := sampleList()[1:]
	g := Resolve(items)

	require.NotNil(t, items[0].RelatedToID)
	assert.Equal(t, uint(1), *items[0].RelatedToID)

	_, ok := g.ParentOf(2)
	assert.False(t, ok)

	_, ok = g.LinkedAudioOf(1)
	assert.False(t, ok)

	// ChildrenOf the deleted id still groups the orphans.
	children := g.ChildrenOf(1)
	require.Len(t, children, 1)
	assert.Equal(t, uint(2), children[0].ID)

	assert.Empty(t, g.Anomalies())
}

func TestDuplicateLinkedAudioTakesFirstAndRecordsAnomaly(t *testing.T) {
	items := []database.MediaItem{
		{ID: 1, MediaType: database.MediaTypeVideo},
		{ID: 2, MediaType: database.MediaTypeAudio, RelatedToID: ref(1)},
		{ID: 3, MediaType: database.MediaTypeAudio, RelatedToID: ref(1)},
	}

	g := Resolve(items)
	audio, ok := g.LinkedAudioOf(1)
	require.True(t, ok)
	assert.Equal(t, uint(2), audio.ID)

	require.Len(t, g.Anomalies(), 1)
	assert.Equal(t, AnomalyDuplicateAudio, g.Anomalies()[0].Kind)
	assert.Equal(t, uint(3), g.Anomalies()[0].ItemID)
}

func TestSelfLinkIgnoredWithAnomaly(t *testing.T) {
	items := []database.MediaItem{
		{ID: 1, MediaType: database.MediaTypeVideo, RelatedToID: ref(1)},
	}

	g := Resolve(items)
	assert.Empty(t, g.ChildrenOf(1))
	_, ok := g.ParentOf(1)
	assert.False(t, ok)

	require.Len(t, g.Anomalies(), 1)
	assert.Equal(t, AnomalySelfLink, g.Anomalies()[0].Kind)
}

func TestLinkToNonVideoRecordsAnomaly(t *testing.T) {
	items := []database.MediaItem{
		{ID: 1, MediaType: database.MediaTypeAudio},
		{ID: 2, MediaType: database.MediaTypeAudio, RelatedToID: ref(1)},
	}

	g := Resolve(items)
	_, ok := g.LinkedAudioOf(1)
	assert.False(t, ok)

	require.Len(t, g.Anomalies(), 1)
	assert.Equal(t, AnomalyBadLinkTarget, g.Anomalies()[0].Kind)
}
