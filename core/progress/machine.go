package progress

import (
	"github.com/trezcool/masomo/core/course"
)

type (
	// Event is an input of Machine.Apply.
	Event interface{ event() }

	// Loaded replaces the course structure and completion set (initial load).
	Loaded struct {
		Sequence *course.Sequence
		Done     CompletionSet
	}

	// Visited makes a lecture the active one.
	Visited struct{ LectureID string }

	// CompletionAcknowledged records a completion the progress collaborator has persisted.
	CompletionAcknowledged struct{ LectureID string }
)

func (Loaded) event()                 {}
func (Visited) event()                {}
func (CompletionAcknowledged) event() {}

// Machine is the unlock/completion state of one course for one learner.
// It is a value: Apply returns the next Machine and leaves the receiver untouched, so a
// failed transition keeps the previous state.
type Machine struct {
	policy   Policy
	seq      *course.Sequence
	done     CompletionSet
	unlock   UnlockState
	activeID string
}

func NewMachine(policy Policy) Machine {
	return Machine{policy: policy, done: NewCompletionSet()}
}

// Loaded reports whether a course structure was applied.
func (m Machine) Loaded() bool { return m.seq != nil }

func (m Machine) Policy() Policy                 { return m.policy }
func (m Machine) Sequence() *course.Sequence     { return m.seq }
func (m Machine) Completed() CompletionSet       { return m.done }
func (m Machine) UnlockState() UnlockState       { return m.unlock }
func (m Machine) ActiveLectureID() string        { return m.activeID }
func (m Machine) State(id string) (State, error) { return m.unlock.Of(id) }

// Apply returns the Machine after ev. On error the returned Machine equals m.
func (m Machine) Apply(ev Event) (Machine, error) {
	switch ev := ev.(type) {
	case Loaded:
		next := Machine{policy: m.policy, seq: ev.Sequence, done: ev.Done}
		next.unlock = Derive(next.seq, next.done, next.policy)
		if next.seq.Len() > 0 {
			next.activeID = next.seq.At(0).Lecture.ID
		}
		return next, nil

	case Visited:
		if err := m.checkUnlocked(ev.LectureID); err != nil {
			return m, err
		}
		m.activeID = ev.LectureID
		return m, nil

	case CompletionAcknowledged:
		if err := m.CanComplete(ev.LectureID); err != nil {
			return m, err
		}
		if m.done.Has(ev.LectureID) {
			return m, nil
		}
		m.done = m.done.Add(ev.LectureID)
		m.unlock = Derive(m.seq, m.done, m.policy)
		return m, nil
	}
	return m, nil
}

// CanComplete checks the precondition of completing lectureID: it must exist and be unlocked.
func (m Machine) CanComplete(lectureID string) error {
	return m.checkUnlocked(lectureID)
}

// IsCompleted reports whether lectureID is already in the completion set.
func (m Machine) IsCompleted(lectureID string) bool { return m.done.Has(lectureID) }

func (m Machine) checkUnlocked(lectureID string) error {
	st, err := m.unlock.Of(lectureID)
	if err != nil {
		return err
	}
	if !st.Unlocked() {
		return &LockedLectureError{LectureID: lectureID}
	}
	return nil
}
