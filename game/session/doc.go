// Package session keeps the live Snekoban game sessions.
//
// Each session owns its own engine.GameEngine, so sessions never share a
// board. Ids are case-insensitive; generated ids are the first eight hex
// characters of a random UUID, and caller-chosen ids are limited to letters,
// digits, dashes and underscores so they can double as file names.
//
// The Manager is safe for concurrent use. With a SessionPersistence attached
// it saves a session on creation and on every access update, and loads
// unknown ids from storage on demand. FilePersistence writes one JSON file per
// session holding the level id and the play state; the board is stored as a
// level description and rebuilt through the level loader on load.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", levels)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", levels.GetDefault())
package session
