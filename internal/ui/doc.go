// Package ui implements the interactive download form using bubbletea's Elm architecture.
//
// The [Model] has three views:
//  1. [FormView] : song name, output folder and device folder inputs, two suggestion slots and a status line
//  2. [PickerView] : choose the output folder with bubbles/filepicker
//  3. [HistoryView] : browse previous downloads and reuse a query
//
// A submission validates the form synchronously and then runs the pipeline as a single tea.Cmd.
// The worker never touches the model; it writes [tasks.ProgressUpdate] values into a [tasks.Queue]
// which a tea.Tick pump drains on the event loop every poll interval. Results and errors are shown
// as modal dialogs that dismiss on enter or esc.
package ui
