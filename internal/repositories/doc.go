// Package repositories implements SQLite persistence for the client.
//
// Key Implementations:
//   - [SessionRepository] : the persisted session, a key/value table written only by the session manager
//   - [SearchHistoryRepository] : queries issued by batch search runs
//   - [HistoryRecorder] : adapts [SearchHistoryRepository] to the batch engine's recorder
//
// The session table is always written and cleared as a whole: [SessionRepository.Save] replaces every key
// inside one transaction and [SessionRepository.Clear] is a single DELETE, so readers never observe a
// credential without its role.
package repositories
