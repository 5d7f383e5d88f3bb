// Package tasks runs batch catalog searches with real-time progress reporting.
//
// # Batch Search
//
// [Engine.BatchSearch] issues one multi-entity search per query:
//   - a worker pool bounded by [BatchOpts.NumWorkers]
//   - a shared token bucket limiter (golang.org/x/time/rate) bounding requests per second
//   - each successful result set written through the formatter package
//   - an export manifest summarizing every query, written last
//
// A failed query does not stop the batch; it is reported in the result and the manifest.
//
// # Progress Reporting
//
// Updates are sent on a caller-supplied channel with select/default, so a slow or absent reader never
// blocks a worker. The [ProgressUpdate] struct carries a phase, step counters and a display message.
//
// # History
//
// An optional [Recorder] (repositories.HistoryRecorder) stores the outcome of every query under the run
// id. Recording errors are logged and otherwise ignored.
package tasks
