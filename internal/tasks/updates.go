package tasks

import (
	"fmt"
)

// Messages shown while the pipeline runs.
const (
	SearchingMessage    = "Searching for similar songs..."
	DownloadingMessage  = "Downloading the song..."
	TransferringMessage = "Transferring to Android device..."
	NoSuggestions       = "No similar songs found"
)

// SuggestionSlots is the number of suggestions a similar update carries at most.
const SuggestionSlots = 2

// Kind tags what a [ProgressUpdate] asks the UI to do.
type Kind int

const (
	KindStatus Kind = iota
	KindSimilar
	KindSuccess
	KindError
	KindEnableButton
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindSimilar:
		return "similar"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindEnableButton:
		return "enable_button"
	default:
		return ""
	}
}

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Kind        Kind     // What the consumer should do with the update
	Phase       Phase    // Pipeline stage that produced the update
	Step        int      // Current step number
	Total       int      // Total steps in a run
	Message     string   // Human-readable message for display
	Suggestions []string // Similar songs, set only for [KindSimilar]
	Data        any      // Optional phase-specific data, e.g. the downloaded file path on success
}

// Terminal reports whether the update ends a run from the UI's point of view.
func (u ProgressUpdate) Terminal() bool {
	return u.Kind == KindSuccess || u.Kind == KindError || u.Kind == KindEnableButton
}

// Pipeline phase enumeration
type Phase int

const (
	Search Phase = iota
	Download
	Transfer
	Done
)

const totalSteps = 3

func (p Phase) String() string {
	switch p {
	case Search:
		return "search"
	case Download:
		return "download"
	case Transfer:
		return "transfer"
	case Done:
		return "done"
	default:
		return ""
	}
}

func searchingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Kind:    KindStatus,
		Phase:   Search,
		Step:    1,
		Total:   totalSteps,
		Message: SearchingMessage,
	}
}

func similarUpdate(suggestions []string) ProgressUpdate {
	return ProgressUpdate{
		Kind:        KindSimilar,
		Phase:       Search,
		Step:        1,
		Total:       totalSteps,
		Message:     fmt.Sprintf("Found %d similar songs", len(suggestions)),
		Suggestions: suggestions,
	}
}

func downloadingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Kind:    KindStatus,
		Phase:   Download,
		Step:    2,
		Total:   totalSteps,
		Message: DownloadingMessage,
	}
}

func transferringUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Kind:    KindStatus,
		Phase:   Transfer,
		Step:    3,
		Total:   totalSteps,
		Message: TransferringMessage,
		Data:    path,
	}
}

func successUpdate(query, path string) ProgressUpdate {
	return ProgressUpdate{
		Kind:    KindSuccess,
		Phase:   Done,
		Step:    totalSteps,
		Total:   totalSteps,
		Message: fmt.Sprintf("Song '%s' successfully downloaded and transferred!", query),
		Data:    path,
	}
}

func errorUpdate(phase Phase, err error) ProgressUpdate {
	return ProgressUpdate{
		Kind:    KindError,
		Phase:   phase,
		Step:    int(phase) + 1,
		Total:   totalSteps,
		Message: err.Error(),
		Data:    err,
	}
}

func enableButtonUpdate() ProgressUpdate {
	return ProgressUpdate{
		Kind:  KindEnableButton,
		Phase: Done,
		Step:  totalSteps,
		Total: totalSteps,
	}
}

// sentinelSuggestions fills every slot with [NoSuggestions].
func sentinelSuggestions() []string {
	out := make([]string, SuggestionSlots)
	for i := range out {
		out[i] = NoSuggestions
	}
	return out
}
