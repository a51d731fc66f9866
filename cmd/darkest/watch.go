package main

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// shaderWatcher signals on changed when one of the watched shader files
// is written or replaced. Editors that save by rename are covered by
// watching the directories rather than the files.
type shaderWatcher struct {
	w       *fsnotify.Watcher
	files   map[string]bool
	changed chan struct{}
	done    chan struct{}
}

func watchShaders(paths ...string) (*shaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sw := &shaderWatcher{
		w:       w,
		files:   make(map[string]bool),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		sw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
		slog.Info("watching shaders", "dir", dir)
	}
	go sw.run()
	return sw, nil
}

func (sw *shaderWatcher) run() {
	defer close(sw.done)
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !sw.files[filepath.Clean(ev.Name)] {
				continue
			}
			slog.Debug("shader changed", "file", ev.Name, "op", ev.Op.String())
			// Coalesce bursts; one pending reload is enough.
			select {
			case sw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			slog.Warn("shader watcher", "err", err)
		}
	}
}

// Changed reports, without blocking, whether a reload is pending.
func (sw *shaderWatcher) Changed() bool {
	select {
	case <-sw.changed:
		return true
	default:
		return false
	}
}

func (sw *shaderWatcher) Close() error {
	err := sw.w.Close()
	<-sw.done
	return err
}
