package job

import (
	"context"
	"errors"
)

// ErrNotFound signals an unknown job id.
var ErrNotFound = errors.New("job not found")

// RecentLimit is the page size of the job listing endpoint.
const RecentLimit = 50

// Fields is a partial update. Only non-nil fields are written.
type Fields struct {
	Status            *Status
	TotalListings     *int
	ProcessedListings *int
	Listings          []Listing
	ErrorMessage      *string
}

// Store persists job records. It holds no lifecycle rules; the orchestrator does.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	UpdateFields(ctx context.Context, id string, f Fields) error
	Get(ctx context.Context, id string) (*Record, error)
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}

// Apply writes the set fields onto rec.
func (f Fields) Apply(rec *Record) {
	if f.Status != nil {
		rec.Status = *f.Status
	}
	if f.TotalListings != nil {
		rec.TotalListings = *f.TotalListings
	}
	if f.ProcessedListings != nil {
		rec.ProcessedListings = *f.ProcessedListings
	}
	if f.Listings != nil {
		rec.Listings = append([]Listing(nil), f.Listings...)
	}
	if f.ErrorMessage != nil {
		rec.ErrorMessage = *f.ErrorMessage
	}
}

// Empty reports whether the update would change nothing.
func (f Fields) Empty() bool {
	return f.Status == nil && f.TotalListings == nil && f.ProcessedListings == nil &&
		f.Listings == nil && f.ErrorMessage == nil
}

func StatusPtr(s Status) *Status { return &s }
func IntPtr(i int) *int          { return &i }
func StringPtr(s string) *string { return &s }
