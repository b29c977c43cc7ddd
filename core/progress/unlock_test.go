package progress_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/tests"
)

func mustFlatten(t *testing.T, c course.Course) *course.Sequence {
	t.Helper()
	seq, err := course.Flatten(c)
	require.NoError(t, err)
	return seq
}

func TestDerive(t *testing.T) {
	twoModules := testutil.NewCourse("c",
		testutil.NewModule("m1", "L1", "L2"),
		testutil.NewModule("m2", "L3", "L4"),
	)
	threeLectures := testutil.NewCourse("c", testutil.NewModule("m1", "L1", "L2", "L3"))

	tests := []struct {
		name         string
		course       course.Course
		done         []string
		policy       progress.Policy
		wantUnlocked []string
	}{
		{
			name:         "empty course",
			course:       testutil.NewCourse("c"),
			wantUnlocked: []string{},
		},
		{
			name:         "nothing completed unlocks the first lecture",
			course:       threeLectures,
			wantUnlocked: []string{"L1"},
		},
		{
			name:         "completing L1 unlocks L2",
			course:       threeLectures,
			done:         []string{"L1"},
			wantUnlocked: []string{"L1", "L2"},
		},
		{
			name:         "all completed",
			course:       threeLectures,
			done:         []string{"L1", "L2", "L3"},
			wantUnlocked: []string{"L1", "L2", "L3"},
		},
		{
			name:         "unlock crosses module boundaries",
			course:       twoModules,
			done:         []string{"L1", "L2"},
			wantUnlocked: []string{"L1", "L2", "L3"},
		},
		{
			name:         "stale ids are ignored",
			course:       twoModules,
			done:         []string{"L1", "deleted"},
			wantUnlocked: []string{"L1", "L2"},
		},
		{
			name:         "furthest completion wins",
			course:       twoModules,
			done:         []string{"L3"},
			wantUnlocked: []string{"L1", "L2", "L3", "L4"},
		},
		{
			name:         "per module: first lecture of every module",
			course:       twoModules,
			policy:       progress.PolicyPerModule,
			wantUnlocked: []string{"L1", "L3"},
		},
		{
			name:         "per module: prefix within module",
			course:       twoModules,
			done:         []string{"L1"},
			policy:       progress.PolicyPerModule,
			wantUnlocked: []string{"L1", "L2", "L3"},
		},
		{
			name:         "per module: completion does not leak into next module",
			course:       twoModules,
			done:         []string{"L1", "L2"},
			policy:       progress.PolicyPerModule,
			wantUnlocked: []string{"L1", "L2", "L3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := mustFlatten(t, tt.course)
			us := progress.Derive(seq, progress.NewCompletionSet(tt.done...), tt.policy)
			assert.Equal(t, tt.wantUnlocked, us.UnlockedIDs())
		})
	}
}

func TestDerive_states(t *testing.T) {
	seq := mustFlatten(t, testutil.NewCourse("c", testutil.NewModule("m1", "L1", "L2", "L3")))
	us := progress.Derive(seq, progress.NewCompletionSet("L1"), progress.PolicySequential)

	for id, want := range map[string]progress.State{
		"L1": progress.UnlockedCompleted,
		"L2": progress.UnlockedUnvisited,
		"L3": progress.Locked,
	} {
		got, err := us.Of(id)
		assert.NoError(t, err)
		assert.Equal(t, want, got, id)
	}

	_, err := us.Of("nope")
	assert.IsType(t, &course.NotFoundError{}, err)
}

// Unlocked indices always form a contiguous prefix of length maxCompletedIndex+2 (capped).
func TestDerive_contiguousPrefix(t *testing.T) {
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("L%d", i+1)
	}
	seq := mustFlatten(t, testutil.NewCourse("c",
		testutil.NewModule("m1", ids[:3]...),
		testutil.NewModule("m2", ids[3:]...),
	))

	// every subset of the 8 lectures
	for mask := 0; mask < 1<<len(ids); mask++ {
		var done []string
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				done = append(done, id)
			}
		}
		us := progress.Derive(seq, progress.NewCompletionSet(done...), progress.PolicySequential)

		wantLen := us.MaxCompletedIndex() + 2
		if wantLen > seq.Len() {
			wantLen = seq.Len()
		}
		if !assert.Equal(t, ids[:wantLen], us.UnlockedIDs(), "done = %v", done) {
			return
		}
	}
}

func TestDerive_perModulePrefixes(t *testing.T) {
	seq := mustFlatten(t, testutil.NewCourse("c",
		testutil.NewModule("m1", "L1", "L2", "L3"),
		testutil.NewModule("m2", "L4", "L5"),
		testutil.NewModule("m3", "L6"),
	))
	us := progress.Derive(seq, progress.NewCompletionSet("L2", "L4"), progress.PolicyPerModule)

	assert.Equal(t, []string{"L1", "L2", "L3", "L4", "L5", "L6"}, us.UnlockedIDs())

	us = progress.Derive(seq, progress.NewCompletionSet("L5"), progress.PolicyPerModule)
	st, err := us.Of("L2")
	require.NoError(t, err)
	assert.Equal(t, progress.Locked, st)
	assert.Equal(t, []string{"L1", "L4", "L5", "L6"}, us.UnlockedIDs())
}

func TestUnlockState_Summary(t *testing.T) {
	seq := mustFlatten(t, testutil.NewCourse("c", testutil.NewModule("m1", "L1", "L2", "L3", "L4")))

	tests := []struct {
		name string
		done []string
		want progress.Summary
	}{
		{name: "none", want: progress.Summary{Total: 4}},
		{name: "one", done: []string{"L1"}, want: progress.Summary{Completed: 1, Total: 4, Percent: 25}},
		{name: "stale ignored", done: []string{"L1", "x"}, want: progress.Summary{Completed: 1, Total: 4, Percent: 25}},
		{name: "all", done: []string{"L1", "L2", "L3", "L4"}, want: progress.Summary{Completed: 4, Total: 4, Percent: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := progress.Derive(seq, progress.NewCompletionSet(tt.done...), progress.PolicySequential)
			assert.Equal(t, tt.want, us.Summary())
		})
	}
}

func TestCompletionSet_Add(t *testing.T) {
	cs := progress.NewCompletionSet("b")
	next := cs.Add("a")

	assert.Equal(t, []string{"b"}, cs.IDs())
	assert.Equal(t, []string{"a", "b"}, next.IDs())
	assert.Equal(t, next, next.Add("a"))
	assert.Equal(t, 2, next.Len())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want progress.Policy
	}{
		{"", progress.PolicySequential},
		{"sequential", progress.PolicySequential},
		{"module", progress.PolicyPerModule},
		{"per-module", progress.PolicyPerModule},
		{"whatever", progress.PolicySequential},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.ParsePolicy(tt.in))
		})
	}
}
