package progress_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/progress"
	inmemdb "github.com/trezcool/masomo/storage/inmem"
)

func TestService(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	seeded, err := inmemdb.Seed(db)
	require.NoError(t, err)
	svc := progress.NewService(inmemdb.NewProgressRepository(db), inmemdb.NewCourseRepository(db))

	seq, err := course.Flatten(seeded.Course)
	require.NoError(t, err)
	ids := seq.IDs()
	learner, other := seeded.Learner.ID, seeded.Admin.ID

	done, err := svc.Completed(learner, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, done)

	require.NoError(t, svc.Complete(learner, ids[0]))
	require.NoError(t, svc.Complete(learner, ids[0]), "completing twice")
	require.NoError(t, svc.Complete(learner, ids[1]))

	var nfErr *course.NotFoundError
	assert.True(t, errors.As(svc.Complete(learner, "lol"), &nfErr))

	done, err = svc.Completed(learner, ids)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[:2], done)

	done, err = svc.Completed(learner, ids[1:])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, done, "only asked lectures are returned")

	done, err = svc.Completed(other, ids)
	require.NoError(t, err)
	assert.Empty(t, done, "progress is per learner")

	us := progress.Derive(seq, progress.NewCompletionSet(ids[:2]...), progress.PolicySequential)
	assert.Equal(t, ids[:3], us.UnlockedIDs())
}
