package player

import (
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
)

type (
	// OutlineLecture is a lecture row of the player's side list.
	OutlineLecture struct {
		Lecture  course.Lecture
		State    progress.State
		Active   bool
		Position course.Position
	}

	// OutlineModule is a module section of the player's side list.
	OutlineModule struct {
		ID       string
		Title    string
		Number   int
		Lectures []OutlineLecture
	}
)

// Outline returns the unlock-gated module/lecture list, in flattened order.
func (s *Session) Outline() ([]OutlineModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready("outline"); err != nil {
		return nil, err
	}

	seq := s.machine.Sequence()
	unlock := s.machine.UnlockState()
	active := s.machine.ActiveLectureID()

	c := seq.Course()
	outline := make([]OutlineModule, 0, len(c.Modules))
	for mi, mod := range c.Modules {
		number := mod.ModuleNumber
		if number <= 0 {
			number = mi + 1
		}
		outline = append(outline, OutlineModule{
			ID:       mod.ID,
			Title:    mod.Title,
			Number:   number,
			Lectures: make([]OutlineLecture, 0, len(mod.Lectures)),
		})
	}
	for i := 0; i < seq.Len(); i++ {
		e := seq.At(i)
		pos, _ := seq.Position(e.Lecture.ID)
		om := &outline[e.ModuleIndex]
		om.Lectures = append(om.Lectures, OutlineLecture{
			Lecture:  *e.Lecture,
			State:    unlock.At(i),
			Active:   e.Lecture.ID == active,
			Position: pos,
		})
	}
	return outline, nil
}
