package mediamodule

import (
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/ervall/mediavault/internal/events"
)

// Watcher observes the upload directory and publishes events when files
// appear or vanish outside the API (manual cleanup, external sync). Consumers
// can surface the mismatch; the database row stays authoritative either way.
type Watcher struct {
	fs       *fsnotify.Watcher
	eventBus events.EventBus
	logger   hclog.Logger
	done     chan struct{}
}

// NewWatcher creates a watcher over the given directory.
func NewWatcher(dir string, bus events.EventBus) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{
		fs:       fs,
		eventBus: bus,
		logger:   hclog.New(&hclog.LoggerOptions{Name: "media-watcher", Level: hclog.Info}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins dispatching filesystem events in the background.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	if w.eventBus == nil {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.logger.Warn("stored media file vanished", "path", ev.Name)
		w.eventBus.Publish(events.New(events.EventMediaFileMissing, ModuleID,
			events.FileEventData{Path: ev.Name}))
	case ev.Op.Has(fsnotify.Create):
		w.eventBus.Publish(events.New(events.EventMediaFileAppeared, ModuleID,
			events.FileEventData{Path: ev.Name}))
	}
}

// Stop ends the dispatch loop and releases the watch.
func (w *Watcher) Stop() {
	close(w.done)
	w.fs.Close()
}
