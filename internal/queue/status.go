package queue

import "fmt"

// Status is the closed set of processing states for a queue record.
type Status string

const (
	StatusQueued             Status = "queued"
	StatusOCRComplete        Status = "ocr_complete"
	StatusAnalysisInProgress Status = "analysis_in_progress"
	StatusAnalysisComplete   Status = "analysis_complete"
	StatusReady              Status = "ready"
	StatusFailed             Status = "failed"
)

// transitions is the explicit state machine. ocr_complete -> ready is the
// degenerate-content short path; failed and ready are terminal.
var transitions = map[Status][]Status{
	StatusQueued:             {StatusOCRComplete, StatusFailed},
	StatusOCRComplete:        {StatusAnalysisInProgress, StatusReady, StatusFailed},
	StatusAnalysisInProgress: {StatusAnalysisComplete, StatusFailed},
	StatusAnalysisComplete:   {StatusReady, StatusFailed},
	StatusReady:              {},
	StatusFailed:             {},
}

// ParseStatus validates a raw status string against the known set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// CanTransitionTo reports whether next is a valid successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
