package mediamodule

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ervall/mediavault/internal/events"
)

func collectFileEvents(bus events.EventBus, eventType events.EventType) <-chan events.Event {
	ch := make(chan events.Event, 16)
	bus.Subscribe(eventType, func(e events.Event) {
		ch <- e
	})
	return ch
}

func waitForEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("no event within timeout")
		return events.Event{}
	}
}

func TestWatcherPublishesAppearAndVanish(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus()

	appeared := collectFileEvents(bus, events.EventMediaFileAppeared)
	missing := collectFileEvents(bus, events.EventMediaFileMissing)

	w, err := NewWatcher(dir, bus)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	path := filepath.Join(dir, "dropped.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	e := waitForEvent(t, appeared)
	data, ok := e.Data.(events.FileEventData)
	require.True(t, ok)
	assert.Equal(t, path, data.Path)

	require.NoError(t, os.Remove(path))
	e = waitForEvent(t, missing)
	data, ok = e.Data.(events.FileEventData)
	require.True(t, ok)
	assert.Equal(t, path, data.Path)
}

func TestWatcherMissingDirFails(t *testing.T) {
	_, err := NewWatcher("/nonexistent/upload/dir", events.NewBus())
	assert.Error(t, err)
}
