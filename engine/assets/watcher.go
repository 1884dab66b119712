package assets

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/crpg/engine/core"
)

// Watcher watches asset directories and reports paths whose packed
// files changed on disk. It never touches the Library itself: the
// single-threaded owner of the Library drains Events and applies
// InvalidateHandle, keeping the handle cache free of locks.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	events   chan string
	done     chan struct{}
	isClosed bool
}

func NewWatcher() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		events:   make(chan string, 64),
		done:     make(chan struct{}),
	}
	go w.start()

	return w, nil
}

// WatchRecursive starts watching the named directory and all
// sub-directories.
func (w *Watcher) WatchRecursive(name string) error {
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	return filepath.Walk(name, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// Events delivers paths of changed or removed asset files. The channel
// is buffered; a slow consumer drops events with a warning rather than
// stalling the watch goroutine.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) start() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := w.fsnotify.Add(e.Name); err != nil {
						core.LogWarn("failed to watch new directory '%s': %s", e.Name, err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				select {
				case w.events <- e.Name:
				default:
					core.LogWarn("dropping change event for '%s': event queue full", e.Name)
				}
			}

		case e, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-w.done:
			w.fsnotify.Close()
			close(w.events)
			return
		}
	}
}

// Close stops the watch goroutine and releases the OS watch handles.
func (w *Watcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	close(w.done)
	return nil
}
