package player

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
)

type (
	// CourseCatalog fetches course structures.
	CourseCatalog interface {
		FetchCourseDetail(ctx context.Context, courseID string) (course.Course, error)
	}

	// ProgressTracker reads and writes the learner's completions.
	ProgressTracker interface {
		// FetchCompletedLectureIDs returns the subset of lectureIDs already completed.
		FetchCompletedLectureIDs(ctx context.Context, courseID string, lectureIDs []string) ([]string, error)
		// PersistCompletion must be idempotent.
		PersistCompletion(ctx context.Context, lectureID string) error
	}
)

// Status is the lifecycle of a Session.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Session is a learner's course-player session.
// It is safe for concurrent use. The lock is never held during collaborator calls: every
// call captures the session generation, and answers arriving after Load or Leave bumped it
// are discarded with ErrStaleResponse.
type Session struct {
	catalog CourseCatalog
	tracker ProgressTracker
	logger  core.Logger
	policy  progress.Policy

	mu       sync.Mutex
	gen      uint64
	courseID string
	status   Status
	loadErr  error
	machine  progress.Machine
}

func NewSession(catalog CourseCatalog, tracker ProgressTracker, policy progress.Policy, logger core.Logger) *Session {
	return &Session{
		catalog: catalog,
		tracker: tracker,
		logger:  logger,
		policy:  policy,
		machine: progress.NewMachine(policy),
	}
}

// Load fetches the structure and completions of courseID and makes its first lecture active.
// Any earlier session state is discarded as soon as Load is called.
func (s *Session) Load(ctx context.Context, courseID string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.courseID = courseID
	s.status = StatusLoading
	s.loadErr = nil
	s.machine = progress.NewMachine(s.policy)
	s.mu.Unlock()

	c, err := s.catalog.FetchCourseDetail(ctx, courseID)
	if err != nil {
		return s.failLoad(gen, errors.Wrap(err, "fetching course detail"))
	}
	seq, err := course.Flatten(c)
	if err != nil {
		return s.failLoad(gen, err)
	}
	ids, err := s.tracker.FetchCompletedLectureIDs(ctx, courseID, seq.IDs())
	if err != nil {
		return s.failLoad(gen, errors.Wrap(err, "fetching completed lectures"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("player: discarding stale course load", map[string]interface{}{"courseId": courseID})
		return ErrStaleResponse
	}
	s.machine, err = s.machine.Apply(progress.Loaded{Sequence: seq, Done: progress.NewCompletionSet(ids...)})
	if err != nil {
		s.status = StatusUnavailable
		s.loadErr = err
		return err
	}
	s.status = StatusReady
	s.logger.Info("player: course loaded", map[string]interface{}{
		"courseId":  courseID,
		"lectures":  seq.Len(),
		"completed": s.machine.UnlockState().Summary().Completed,
	})
	return nil
}

func (s *Session) failLoad(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStaleResponse
	}
	s.status = StatusUnavailable
	s.loadErr = err
	s.logger.Error("player: course unavailable", err, map[string]interface{}{"courseId": s.courseID})
	return err
}

// Leave discards the session state; in-flight answers become stale.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.courseID = ""
	s.status = StatusIdle
	s.loadErr = nil
	s.machine = progress.NewMachine(s.policy)
}

// Status returns the session status and, when unavailable, the load error.
func (s *Session) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.loadErr
}

func (s *Session) CourseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courseID
}

// Course returns the loaded course, modules and lectures sorted.
func (s *Session) Course() (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("course"); err != nil {
		return course.Course{}, err
	}
	return s.machine.Sequence().Course(), nil
}

// ready must be called with s.mu held.
func (s *Session) ready(op string) error {
	if s.status != StatusReady {
		return &NotReadyError{Op: op, Status: s.status}
	}
	return nil
}

// UnlockState returns the state of lectureID.
func (s *Session) UnlockState(lectureID string) (progress.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("unlock state"); err != nil {
		return progress.Locked, err
	}
	return s.machine.State(lectureID)
}

// ActiveLecture returns the lecture being played, if any.
func (s *Session) ActiveLecture() (course.Lecture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusReady || s.machine.ActiveLectureID() == "" {
		return course.Lecture{}, false
	}
	e, err := s.machine.Sequence().Entry(s.machine.ActiveLectureID())
	if err != nil {
		return course.Lecture{}, false
	}
	return *e.Lecture, true
}

// SelectLecture makes lectureID the active lecture. Locked lectures are refused.
func (s *Session) SelectLecture(lectureID string) (course.Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("select lecture"); err != nil {
		return course.Lecture{}, err
	}
	return s.visit(lectureID)
}

// visit must be called with s.mu held.
func (s *Session) visit(lectureID string) (course.Lecture, error) {
	m, err := s.machine.Apply(progress.Visited{LectureID: lectureID})
	if err != nil {
		return course.Lecture{}, err
	}
	s.machine = m
	e, err := m.Sequence().Entry(lectureID)
	if err != nil {
		return course.Lecture{}, err
	}
	return *e.Lecture, nil
}

// Next makes the following lecture of the active module active.
func (s *Session) Next() (course.Lecture, error) {
	return s.step("next", 1)
}

// Previous makes the preceding lecture of the active module active.
func (s *Session) Previous() (course.Lecture, error) {
	return s.step("previous", -1)
}

func (s *Session) step(op string, delta int) (course.Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(op); err != nil {
		return course.Lecture{}, err
	}

	seq := s.machine.Sequence()
	cur, err := seq.Entry(s.machine.ActiveLectureID())
	if err != nil {
		return course.Lecture{}, err
	}
	start, end := seq.ModuleRange(cur.ModuleIndex)
	target := cur.Index + delta
	if target < start || target >= end {
		return course.Lecture{}, ErrModuleBoundary
	}
	return s.visit(seq.At(target).Lecture.ID)
}

// MarkComplete persists the completion of lectureID, then unlocks what follows it.
// Completing a completed lecture succeeds without a network call. If persisting fails a
// *PersistenceError is returned and nothing changes.
func (s *Session) MarkComplete(ctx context.Context, lectureID string) error {
	s.mu.Lock()
	if err := s.ready("mark complete"); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.machine.CanComplete(lectureID); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.machine.IsCompleted(lectureID) {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	persistErr := s.tracker.PersistCompletion(ctx, lectureID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStaleResponse
	}
	if persistErr != nil {
		err := &PersistenceError{LectureID: lectureID, Err: persistErr}
		s.logger.Warn("player: completion not persisted", err, map[string]interface{}{
			"courseId":  s.courseID,
			"lectureId": lectureID,
		})
		return err
	}

	m, err := s.machine.Apply(progress.CompletionAcknowledged{LectureID: lectureID})
	if err != nil {
		return err
	}
	s.machine = m
	return nil
}

// Summary returns the learner's completion of the course.
func (s *Session) Summary() (progress.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("summary"); err != nil {
		return progress.Summary{}, err
	}
	return s.machine.UnlockState().Summary(), nil
}
