// Package checkpoint provides durable, per-project progress markers so an
// interrupted scrape can resume where it left off.
//
// One JSON file exists per project key. Files are written atomically
// (write-then-rename) so a reader never observes a partial checkpoint. A
// missing or corrupt file is treated as a cold start rather than an error:
// losing a checkpoint only costs a few re-downloaded pages, an accepted
// at-least-once guarantee.
package checkpoint
