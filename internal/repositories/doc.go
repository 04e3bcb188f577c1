// Package repositories implements SQLite persistence for the download history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [DownloadRepository] : Pipeline runs with their suggestions
//   - [HistoryAdapter] : Feeds finished runs from tasks.Pipeline into [DownloadRepository]
//
// Sequence numbers provide stable, human-readable ordering (e.g., download #42) independent of UUIDs and creation timestamps.
// The counter lives in the downloads_sequence table and is bumped in the same transaction as the insert.
package repositories
