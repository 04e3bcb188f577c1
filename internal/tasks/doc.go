// Package tasks runs one song through the download-and-transfer pipeline with real-time progress reporting.
//
// # Pipeline
//
// [Pipeline.Run] performs three stages in order:
//
//  1. Search : asks the [Suggester] for up to two similar songs (best effort)
//     - Any error or empty answer becomes the [NoSuggestions] sentinel pair
//  2. Download : asks the [Downloader] for the audio file
//     - A missing file fails the run with shared.ErrNotFound
//  3. Transfer : asks the [Transferer] to push the file to the device
//     - Fails with shared.ErrDeviceUnavailable or shared.ErrTransferFailed
//
// # Progress Reporting
//
// Every run emits status, similar, then success or error, and always finishes with enable_button.
// The [ProgressUpdate] struct contains kind, phase, step counters, messages, and optional data.
//
// Updates go into a [Sink]. The [Queue] sink is an unbounded FIFO: Put never blocks or drops, and the
// UI pump drains it with non-blocking [Queue.TryGet] calls.
//
// # History
//
// The optional [HistoryRecorder] receives every finished run. Recording errors are logged and ignored
// so they never change the outcome shown to the user.
package tasks
