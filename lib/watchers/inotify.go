//go:build !darwin
// +build !darwin

package watchers

import (
	"github.com/fsnotify/fsnotify"

	"github.com/keyrig/keyrig/lib/log"
)

func init() {
	RegisterWatcherFactory(newInotifyWatcher)
}

type inotifyWatcher struct {
	w  *fsnotify.Watcher
	ch chan *FSEvent
}

func newInotifyWatcher() (FSWatcher, error) {
	watcher := &inotifyWatcher{
		ch: make(chan *FSEvent, 16),
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher.w = w

	go watcher.watch()
	return watcher, nil
}

func (w *inotifyWatcher) watch() {
	defer log.PanicHandler()
	for ev := range w.w.Events {
		// files being created, written, removed or renamed
		switch {
		case ev.Op.Has(fsnotify.Create):
			w.ch <- &FSEvent{Operation: FSCreate, Path: ev.Name}
		case ev.Op.Has(fsnotify.Write):
			w.ch <- &FSEvent{Operation: FSWrite, Path: ev.Name}
		case ev.Op.Has(fsnotify.Remove):
			w.ch <- &FSEvent{Operation: FSRemove, Path: ev.Name}
		case ev.Op.Has(fsnotify.Rename):
			w.ch <- &FSEvent{Operation: FSRename, Path: ev.Name}
		default:
			continue
		}
	}
}

func (w *inotifyWatcher) Events() chan *FSEvent {
	return w.ch
}

func (w *inotifyWatcher) Add(p string) error {
	return w.w.Add(p)
}

func (w *inotifyWatcher) Remove(p string) error {
	return w.w.Remove(p)
}
