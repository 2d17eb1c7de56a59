package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch drops cached levels whose files change on disk and reloads the
// default when its file is touched. It blocks until ctx is cancelled and
// should be run in a goroutine.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(m.configDir); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Level watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// handleEvent processes a single fsnotify event
func (m *Manager) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !isLevelFile(name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	id := levelID(name)
	m.Invalidate(id)

	defaultID := m.DefaultID()
	switch {
	case defaultID == id:
		// Keep the chosen default if it still loads
		if config, err := m.LoadConfig(id); err == nil {
			m.setDefault(id, config)
			return
		}
		fallthrough
	case defaultID == "" || id == DefaultLevel:
		if err := m.loadDefaultConfig(); err != nil {
			log.Printf("Failed to reload default level after %s: %v", event.Op, err)
		}
	}
}
