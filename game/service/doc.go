// Package service provides the business logic layer for the Snekoban puzzle server.
//
// The service package implements:
//   - Multi-session game management
//   - Level loading and saving through a ConfigManager
//   - Move processing with per-step diagnostics
//   - Shortest-solution search and hints
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads, lists and saves level files.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// game engine. Each session owns its own engine. Mutating operations hold the
// service lock for their whole duration. Solve and Hint only hold it long
// enough to take the current board, which is immutable, and search outside it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithSolveLimit(500_000))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "up", false)
//	solution, err := gameService.Solve(ctx, info.ID)
//
// Errors:
//
// Lookups fail with ErrSessionNotFound or ErrLevelNotFound, and malformed
// levels with ErrInvalidLevel. Unknown directions surface as
// engine.ErrInvalidDirection. Callers should match them with errors.Is.
//
// Metrics:
//
// Move outcomes, solver runs and the active session count are exported through
// the default Prometheus registry.
package service
