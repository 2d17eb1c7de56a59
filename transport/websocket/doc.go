// Package websocket pushes live game updates to browsers and other watchers.
//
// A single Hub goroutine owns registration and fan-out. Watchers connect with
// ?session=<id> and receive JSON messages for that session only:
//
//	{"session_id":"ab12cd34","event":"state_update","game_state":{...}}
//	{"session_id":"ab12cd34","event":"solved","data":{"moves":["up","right"]}}
//
// Connections are read-only. Incoming frames are discarded and only keep the
// pong deadline fresh.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastToSession(id, state)
//
// Broadcasts never block the caller. When the queue is full the message is
// dropped and logged, and a watcher whose own buffer is full is disconnected.
package websocket
