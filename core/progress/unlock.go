package progress

import (
	"sort"

	"github.com/trezcool/masomo/core/course"
)

// State is the playability of a lecture.
type State int

const (
	Locked State = iota
	UnlockedUnvisited
	UnlockedCompleted
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case UnlockedUnvisited:
		return "unlocked"
	case UnlockedCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (s State) Unlocked() bool { return s != Locked }

// Policy decides which lectures are unlocked.
type Policy int

const (
	// PolicySequential unlocks a contiguous prefix of the whole course:
	// index i is unlocked iff i <= maxCompletedIndex+1.
	PolicySequential Policy = iota
	// PolicyPerModule unlocks the first lecture of every module, then a contiguous prefix
	// within each module.
	PolicyPerModule
)

// ParsePolicy maps a config value to a Policy, defaulting to PolicySequential.
func ParsePolicy(s string) Policy {
	switch s {
	case "module", "per-module", "permodule":
		return PolicyPerModule
	default:
		return PolicySequential
	}
}

func (p Policy) String() string {
	if p == PolicyPerModule {
		return "module"
	}
	return "sequential"
}

// CompletionSet is a set of completed lecture ids. It only grows: Add returns a new set.
type CompletionSet struct {
	ids map[string]struct{}
}

func NewCompletionSet(ids ...string) CompletionSet {
	set := CompletionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

func (cs CompletionSet) Has(id string) bool {
	_, ok := cs.ids[id]
	return ok
}

func (cs CompletionSet) Len() int { return len(cs.ids) }

// Add returns a copy of cs holding id too.
func (cs CompletionSet) Add(id string) CompletionSet {
	if cs.Has(id) {
		return cs
	}
	next := CompletionSet{ids: make(map[string]struct{}, len(cs.ids)+1)}
	for k := range cs.ids {
		next.ids[k] = struct{}{}
	}
	next.ids[id] = struct{}{}
	return next
}

// IDs returns the ids sorted.
func (cs CompletionSet) IDs() []string {
	ids := make([]string, 0, len(cs.ids))
	for id := range cs.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnlockState is the per-lecture State derived from a Sequence and a CompletionSet.
// It is recomputed from scratch on every input change.
type UnlockState struct {
	seq               *course.Sequence
	states            []State
	maxCompletedIndex int
	completed         int
}

// Derive computes the UnlockState. Completed ids absent from seq (stale progress, deleted
// lectures) are ignored.
func Derive(seq *course.Sequence, done CompletionSet, policy Policy) UnlockState {
	us := UnlockState{
		seq:               seq,
		states:            make([]State, seq.Len()),
		maxCompletedIndex: -1,
	}

	// highest completed index: over the whole course and per module
	modMax := make(map[int]int)
	for i := 0; i < seq.Len(); i++ {
		e := seq.At(i)
		if !done.Has(e.Lecture.ID) {
			continue
		}
		us.completed++
		us.maxCompletedIndex = i
		modMax[e.ModuleIndex] = e.LectureIndex
	}

	for i := 0; i < seq.Len(); i++ {
		e := seq.At(i)
		var unlocked bool
		switch policy {
		case PolicyPerModule:
			last, ok := modMax[e.ModuleIndex]
			if !ok {
				last = -1
			}
			unlocked = e.LectureIndex <= last+1
		default:
			unlocked = i <= us.maxCompletedIndex+1
		}

		switch {
		case done.Has(e.Lecture.ID):
			us.states[i] = UnlockedCompleted
		case unlocked:
			us.states[i] = UnlockedUnvisited
		default:
			us.states[i] = Locked
		}
	}
	return us
}

// Of returns the State of lectureID.
func (us UnlockState) Of(lectureID string) (State, error) {
	i, err := us.seq.IndexOf(lectureID)
	if err != nil {
		return Locked, err
	}
	return us.states[i], nil
}

// At returns the State at flattened index i.
func (us UnlockState) At(i int) State { return us.states[i] }

// MaxCompletedIndex is the highest flattened index found completed, -1 if none.
func (us UnlockState) MaxCompletedIndex() int { return us.maxCompletedIndex }

// UnlockedIDs returns the playable lecture ids in flattened order.
func (us UnlockState) UnlockedIDs() []string {
	ids := make([]string, 0, len(us.states))
	for i, st := range us.states {
		if st.Unlocked() {
			ids = append(ids, us.seq.At(i).Lecture.ID)
		}
	}
	return ids
}

// Summary is the learner's completion of a course.
type Summary struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"` // 0-100
}

func (us UnlockState) Summary() Summary {
	sum := Summary{Completed: us.completed, Total: len(us.states)}
	if sum.Total > 0 {
		sum.Percent = float64(sum.Completed) * 100 / float64(sum.Total)
	}
	return sum
}
