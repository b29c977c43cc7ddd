package course

import "fmt"

// MalformedCourseError reports a structural integrity violation in fetched course data.
type MalformedCourseError struct {
	CourseID string
	Reason   string
}

func (err *MalformedCourseError) Error() string {
	return fmt.Sprintf("malformed course %q: %s", err.CourseID, err.Reason)
}

// NotFoundError reports an id lookup miss in a flattened Sequence.
type NotFoundError struct {
	Kind string // lecture | module
	ID   string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", err.Kind, err.ID)
}
