package job

import "fmt"

type Status string

const (
	StatusProcessing   Status = "processing"
	StatusScraping     Status = "scraping"
	StatusProcessingAI Status = "processing_ai"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusProcessing: {
		StatusScraping: true,
		StatusError:    true,
	},
	StatusScraping: {
		StatusScraping:     true,
		StatusProcessingAI: true,
		StatusError:        true,
	},
	StatusProcessingAI: {
		StatusProcessingAI: true,
		StatusCompleted:    true,
		StatusError:        true,
	},
	StatusCompleted: {},
	StatusError:     {},
}

// IsKnownStatus rejects values a store may hold from an older or foreign writer.
func IsKnownStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no further mutation may happen.
func (s Status) IsTerminal() bool { return s == StatusCompleted || s == StatusError }

func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// CheckTransition returns a descriptive error for a disallowed move.
func CheckTransition(jobID string, from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid job status transition: %q -> %q (job_id=%s)", from, to, jobID)
	}
	return nil
}
