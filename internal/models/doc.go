// Package models defines the domain entities of songpush.
//
// The package contains two categories of types:
//
// 1. Session values that never touch the database
//   - [Request] : A single submission (query plus local and device folders)
//   - [SeenSet] : Session-scoped set of queries and suggestions already shown
//
// 2. Persistent entities
//   - [Download] : One pipeline run with its outcome and resulting file paths
//
// Persistent entities implement the [Model] interface providing ID, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
