package progress

import "fmt"

// LockedLectureError reports an attempt to visit or complete a locked lecture.
// Controls for locked lectures must be disabled; this is a caller contract violation.
type LockedLectureError struct {
	LectureID string
}

func (err *LockedLectureError) Error() string {
	return fmt.Sprintf("lecture %q is locked", err.LectureID)
}
