package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	SearchQueries
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case SearchQueries:
		return "search_queries"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func prepareUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d queries into %s...", total, dir),
	}
}

func queryCompletedUpdate(step, total int, res QueryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d results)", step, total, res.Query, res.Tracks+res.Artists+res.Albums),
		Data:    res,
	}
}

func queryFailedUpdate(step, total int, res QueryResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Query, res.Err),
		Data:    res,
	}
}

func manifestUpdate(total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Writing manifest %s...", path),
	}
}
