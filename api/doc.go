// Package api provides the HTTP REST API for the Snekoban server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create ({"config_id": "classic"}; empty uses the default level)
//   - GET    /api/sessions                 list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified         multi-session view (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}            session info with play state and level
//   - DELETE /api/sessions/{id}            delete
//
// Play:
//   - GET  /api/sessions/{id}/state        current play state
//   - POST /api/sessions/{id}/move         {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move    {"moves": ["up","left"], "reset": false}
//   - POST /api/sessions/{id}/reset        back to the level's initial board
//   - GET  /api/sessions/{id}/history      ?page=1&limit=20&order=desc
//
// Solver:
//   - POST /api/sessions/{id}/solve        shortest solution from the current board
//   - GET  /api/sessions/{id}/hint         first move of that solution
//   - GET  /api/levels/{name}/solve        shortest solution from a level's initial board
//
// Levels:
//   - GET  /api/levels                     list with dimensions and crate/target counts
//   - GET  /api/levels/{name}              level definition (.json/.yaml suffix optional)
//   - POST /api/levels?id=name             save a level as JSON
//
// Other:
//   - GET /api/health
//   - GET /metrics                         Prometheus exposition
//   - GET /ws?session={id}                 websocket state updates
//
// Errors are JSON objects of the form {"error": "..."}. Unknown sessions and
// levels answer 404, unknown directions and malformed levels answer 400.
//
// Move responses carry a step trace:
//
//	step:         {idx, dir, from, to, outcome, success, pushed, crate_from, crate_to, victory}
//	attempted_to: {row, col, tile_char, reason}   // only when blocked
//
// Bulk moves stop at the first blocked move or at victory and report
// stop_reason_code (blocked_wall, blocked_crate, blocked_boundary,
// invalid_direction, victory), stopped_on_move, steps, possible_moves and a
// local_view_3x3 around the player. At most engine.MaxBulkMoves moves run per
// call; longer requests are truncated.
package api
