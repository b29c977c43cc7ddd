package player

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/progress"
)

var (
	// ErrStaleResponse is returned when a collaborator answered for a course the session has
	// since left or reloaded; the answer was discarded.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrModuleBoundary is returned by Next/Previous at the first/last lecture of a module.
	ErrModuleBoundary = errors.New("no lecture beyond the current module")
)

// NotReadyError reports an operation before the course finished loading.
type NotReadyError struct {
	Op     string
	Status Status
}

func (err *NotReadyError) Error() string {
	return fmt.Sprintf("%s: course not ready (%s)", err.Op, err.Status)
}

// PersistenceError reports a failed completion write. Local state is left untouched and
// the learner may retry.
type PersistenceError struct {
	LectureID string
	Err       error
}

func (err *PersistenceError) Error() string {
	return fmt.Sprintf("persisting completion of lecture %q: %v", err.LectureID, err.Err)
}

func (err *PersistenceError) Unwrap() error { return err.Err }

// Severity tells the UI how to surface an error.
type Severity int

const (
	SeverityNone Severity = iota
	// SeverityIgnorable errors need no feedback (stale responses, cancelled requests).
	SeverityIgnorable
	// SeverityContract errors mean the UI let through an action it should have disabled.
	SeverityContract
	// SeverityRetryable errors are shown as a transient notification.
	SeverityRetryable
	// SeverityFatal errors make the course unavailable for this session.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityIgnorable:
		return "ignorable"
	case SeverityContract:
		return "contract"
	case SeverityRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// Classify maps err to its Severity.
func Classify(err error) Severity {
	var (
		persistErr  *PersistenceError
		notReadyErr *NotReadyError
		lockedErr   *progress.LockedLectureError
	)

	switch {
	case err == nil:
		return SeverityNone
	case errors.Is(err, ErrStaleResponse), errors.Is(err, context.Canceled):
		return SeverityIgnorable
	case errors.As(err, &persistErr):
		return SeverityRetryable
	case errors.Is(err, ErrModuleBoundary), errors.As(err, &notReadyErr), errors.As(err, &lockedErr):
		return SeverityContract
	default:
		// *course.MalformedCourseError, *course.NotFoundError, failed loads
		return SeverityFatal
	}
}
