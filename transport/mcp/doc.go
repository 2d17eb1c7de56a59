// Package mcp exposes the game to MCP clients such as LLM agents.
//
// Client is a thin proxy: every tool call is translated into a REST request
// against a running server and the JSON answer is rendered as plain text.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, reset_game, move_history
//   - list_levels, solve, hint, describe_cell, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Tool errors are returned as error results, never as Go errors, so the agent
// sees the server's message.
package mcp
