package course

import (
	"fmt"
	"math"
	"sort"
)

// Entry is a Lecture's slot in a flattened Sequence.
type Entry struct {
	Lecture      *Lecture
	Module       *Module
	Index        int // position in the whole course
	ModuleIndex  int // position of Module in the course
	LectureIndex int // position of Lecture within Module
}

// Position describes where a lecture sits within its module.
type Position struct {
	ModuleNumber int
	ModuleTitle  string
	Lecture      int // 1-based, within the module
	OfLectures   int
}

func (p Position) String() string {
	return fmt.Sprintf("Module %d — Lecture %d of %d", p.ModuleNumber, p.Lecture, p.OfLectures)
}

// Sequence is the whole-course lecture order: modules by module number, then lectures by
// lecture number within each module. It never changes once built.
type Sequence struct {
	course  Course
	entries []Entry
}

// Flatten builds the Sequence of course c.
// Ordinal fields are the source of truth: modules and lectures are sorted by them (stable, so
// equal ordinals keep their array order, and lectures without an ordinal follow numbered ones).
// It fails with a *MalformedCourseError if a lecture has no id or an id appears twice.
func Flatten(c Course) (*Sequence, error) {
	mods := make([]Module, len(c.Modules))
	for i, mod := range c.Modules {
		mod.Lectures = append([]Lecture(nil), mod.Lectures...)
		sort.SliceStable(mod.Lectures, func(i, j int) bool {
			return ordinal(mod.Lectures[i].LectureNumber) < ordinal(mod.Lectures[j].LectureNumber)
		})
		mods[i] = mod
	}
	sort.SliceStable(mods, func(i, j int) bool { return ordinal(mods[i].ModuleNumber) < ordinal(mods[j].ModuleNumber) })
	c.Modules = mods

	seq := &Sequence{
		course:  c,
		entries: make([]Entry, 0, c.LectureCount()),
	}
	seen := make(map[string]struct{}, c.LectureCount())
	for mi := range seq.course.Modules {
		mod := &seq.course.Modules[mi]
		for li := range mod.Lectures {
			lec := &mod.Lectures[li]
			if lec.ID == "" {
				return nil, &MalformedCourseError{
					CourseID: c.ID,
					Reason:   fmt.Sprintf("lecture %d of module %q has no id", li+1, mod.Title),
				}
			}
			if _, dup := seen[lec.ID]; dup {
				return nil, &MalformedCourseError{
					CourseID: c.ID,
					Reason:   fmt.Sprintf("duplicate lecture id %q", lec.ID),
				}
			}
			seen[lec.ID] = struct{}{}
			seq.entries = append(seq.entries, Entry{
				Lecture:      lec,
				Module:       mod,
				Index:        len(seq.entries),
				ModuleIndex:  mi,
				LectureIndex: li,
			})
		}
	}
	return seq, nil
}

func ordinal(n int) int {
	if n <= 0 {
		return math.MaxInt32
	}
	return n
}

// Course returns the course with modules and lectures in flattened order.
func (s *Sequence) Course() Course { return s.course }

func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// At returns the entry at flattened index i; it panics if i is out of range.
func (s *Sequence) At(i int) Entry { return s.entries[i] }

// IDs returns the lecture ids in flattened order.
func (s *Sequence) IDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.Lecture.ID
	}
	return ids
}

// IndexOf returns the flattened index of lectureID.
func (s *Sequence) IndexOf(lectureID string) (int, error) {
	if s == nil {
		return -1, &NotFoundError{Kind: "lecture", ID: lectureID}
	}
	for i, e := range s.entries {
		if e.Lecture.ID == lectureID {
			return i, nil
		}
	}
	return -1, &NotFoundError{Kind: "lecture", ID: lectureID}
}

// Entry returns the entry of lectureID.
func (s *Sequence) Entry(lectureID string) (Entry, error) {
	i, err := s.IndexOf(lectureID)
	if err != nil {
		return Entry{}, err
	}
	return s.entries[i], nil
}

// ModuleOf returns the module holding lectureID.
func (s *Sequence) ModuleOf(lectureID string) (Module, error) {
	e, err := s.Entry(lectureID)
	if err != nil {
		return Module{}, err
	}
	return *e.Module, nil
}

// Position returns the caption position of lectureID.
func (s *Sequence) Position(lectureID string) (Position, error) {
	e, err := s.Entry(lectureID)
	if err != nil {
		return Position{}, err
	}
	modNum := e.Module.ModuleNumber
	if modNum <= 0 {
		modNum = e.ModuleIndex + 1
	}
	return Position{
		ModuleNumber: modNum,
		ModuleTitle:  e.Module.Title,
		Lecture:      e.LectureIndex + 1,
		OfLectures:   len(e.Module.Lectures),
	}, nil
}

// ModuleRange returns the flattened index range [start, end) of the module at moduleIndex.
func (s *Sequence) ModuleRange(moduleIndex int) (start, end int) {
	start = -1
	for i, e := range s.entries {
		if e.ModuleIndex == moduleIndex {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
	}
	if start < 0 {
		return 0, 0
	}
	return start, end
}
