package inmemdb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/user"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	require.NoError(t, err)
	return db
}

func TestSeed(t *testing.T) {
	db := openDB(t)
	seeded, err := Seed(db)
	require.NoError(t, err)

	assert.True(t, seeded.Admin.IsAdmin())
	assert.False(t, seeded.Learner.IsAdmin())
	assert.NoError(t, seeded.Learner.CheckPassword(SeedPassword))

	require.Len(t, seeded.Course.Modules, 2)
	assert.Equal(t, 1, seeded.Course.Modules[0].ModuleNumber)
	assert.Equal(t, 2, seeded.Course.Modules[1].ModuleNumber)
	assert.Equal(t, 5, seeded.Course.LectureCount())

	_, err = course.Flatten(seeded.Course)
	assert.NoError(t, err)
}

func TestCourseRepository_cascadingDelete(t *testing.T) {
	db := openDB(t)
	seeded, err := Seed(db)
	require.NoError(t, err)
	repo := NewCourseRepository(db)

	lecID := seeded.Course.Modules[1].Lectures[0].ID
	require.NoError(t, repo.DeleteModule(seeded.Course.Modules[1].ID))
	_, err = repo.GetLectureByID(lecID)
	var nfErr *course.NotFoundError
	assert.True(t, errors.As(err, &nfErr))

	lectures, err := repo.QueryLectures(course.LectureFilter{CourseID: seeded.Course.ID})
	require.NoError(t, err)
	assert.Len(t, lectures, 3)

	require.NoError(t, repo.DeleteCourse(seeded.Course.ID))
	lectures, err = repo.QueryLectures(course.LectureFilter{})
	require.NoError(t, err)
	assert.Empty(t, lectures)
	assert.Error(t, repo.DeleteCourse(seeded.Course.ID))
}

func TestEnrollmentRepository(t *testing.T) {
	repo := NewEnrollmentRepository(openDB(t))

	_, err := repo.CreateEnrollment(course.Enrollment{UserID: "u1", CourseID: "c1"})
	require.NoError(t, err)
	_, err = repo.CreateEnrollment(course.Enrollment{UserID: "u1", CourseID: "c1"})
	assert.Equal(t, course.ErrAlreadyEnrolled, err)
	_, err = repo.CreateEnrollment(course.Enrollment{UserID: "u2", CourseID: "c1"})
	require.NoError(t, err)

	enrollments, err := repo.QueryEnrollments("u1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "c1", enrollments[0].CourseID)
}

func TestProgressRepository(t *testing.T) {
	repo := NewProgressRepository(openDB(t))

	require.NoError(t, repo.MarkCompleted("u1", "L1"))
	require.NoError(t, repo.MarkCompleted("u1", "L1"))
	require.NoError(t, repo.MarkCompleted("u2", "L2"))

	ids, err := repo.CompletedLectureIDs("u1", []string{"L1", "L2", "L3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, ids)

	ids, err = repo.CompletedLectureIDs("nobody", []string{"L1"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openDB(t))

	usr, err := repo.CreateUser(user.User{Name: "A", Email: "a@test.cd", Role: user.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)

	_, err = repo.CreateUser(user.User{Name: "B", Email: "a@test.cd"})
	assert.Equal(t, user.ErrEmailExists, err)
	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness("a@test.cd"))
	assert.NoError(t, repo.CheckEmailUniqueness("a@test.cd", usr))

	usr, err = repo.UpdateUserRole(usr.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())

	require.NoError(t, repo.DeleteUsersByID(usr.ID))
	_, err = repo.GetUserByID(usr.ID)
	assert.Equal(t, user.ErrNotFound, err)
}
