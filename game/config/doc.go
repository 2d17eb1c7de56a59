// Package config manages the directory of level files served by Snekoban.
//
// Levels are stored one per file as JSON (.json) or YAML (.yaml, .yml). A
// level's id is its file name without the extension; that id is what clients
// pass when creating a session. Each file holds a name, a description, the
// board as either a text layout or a label grid, and optional messages:
//
//	name: Classic
//	description: Three crates in a small room
//	layout:
//	  - "#######"
//	  - "#.@ # #"
//	  - "#$* $ #"
//	  - "#######"
//
// The Manager caches parsed levels, picks a default (classic, else the first
// loadable file, else a built-in one-push level) and can watch the directory
// so edited files are picked up without a restart.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//	go manager.Watch(ctx)
//
//	level, err := manager.LoadConfig("classic")
package config
