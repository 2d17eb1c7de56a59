// Package engine provides the core rules of Snekoban, a Sokoban-style puzzle.
//
// The engine package implements:
//   - Board geometry and the fixed up/down/left/right direction table
//   - Immutable board snapshots (GameState) with shared walls and targets
//   - The movement engine with push rules (Step, Apply)
//   - The victory predicate and the canonical search key
//   - Conversion between boards and level descriptions (NewGame, Dump)
//   - A text layout codec in the usual Sokoban notation
//   - Level configuration loading and validation (JSON or YAML)
//
// Core Types:
//
// GameState is never mutated after construction; every Step returns a new
// state whose crate set is an independent copy. GameEngine wraps the
// immutable core for interactive play and keeps the move history.
//
// Usage:
//
//	config, err := engine.LoadLevelConfig("levels/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moved := gameEngine.Move("up")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The player walks on floor cells and pushes a single computer (crate) by
// walking into it, provided the cell beyond is free. Walls, other crates and
// the edge of the grid block movement. The level is won when every target is
// covered and no crate sits elsewhere; a level without targets is never won.
package engine
