// Package sqlite persists documents, links, custom templates, the index
// queue and scheduler state in a single SQLite database.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds
// without CGO. One Store hands out the individual port implementations:
//
//   - DocumentStore: documents and their symmetric links
//   - TemplateStore: custom template schemas stored as JSON
//   - IndexQueue: pending index jobs that survive restarts
//   - SchedulerStore: task state and run history
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory. Each applied version is recorded in
// schema_migrations.
//
// # Data Location
//
// By default the database lives at ~/.docsmith/data/docsmith.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL
// mode with a busy timeout.
package sqlite
