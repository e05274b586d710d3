package reservation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotDeletable            = errors.New("reservation is not deletable")
	ErrConfirmationRequired    = errors.New("deletion requires confirmation")
	ErrListingUnavailable      = errors.New("no reservation source answered")
)

// SourceFailure records one listing endpoint that failed during a fan-out.
type SourceFailure struct {
	Source string
	Err    error
}

// PartialFetchFailure is a non-blocking notice: some sources failed, the rest were merged.
type PartialFetchFailure struct {
	Failures []SourceFailure
	Total    int
}

func (e *PartialFetchFailure) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, fmt.Sprintf("%s: %v", f.Source, f.Err))
	}
	return fmt.Sprintf("%d of %d reservation sources failed (%s)", len(e.Failures), e.Total, strings.Join(names, "; "))
}

func (e *PartialFetchFailure) Sources() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Source)
	}
	return out
}

// Notice is the user-facing text shown next to a partially loaded list.
func (e *PartialFetchFailure) Notice() string {
	return fmt.Sprintf("Some bookings could not be loaded (%d of %d sources unavailable).", len(e.Failures), e.Total)
}
