package folio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/debounce"
)

// Invalidator is anything that can drop cached state.
type Invalidator interface {
	Invalidate()
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.HasSuffix(name, ".md") || name == content.IndexFile
}

// Watch invalidates cache whenever a post or the index file in dir
// changes. Bursts of events are coalesced. The returned func stops
// watching.
func Watch(dir string, cache Invalidator, logger Logger) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	reload := debounce.New(debounce.FileChange, func() {
		logger.Infof("posts changed, reloading")
		cache.Invalidate()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if relevant(ev) {
					reload.Trigger()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("watcher error: %v", err)
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
		reload.Stop()
	}, nil
}
