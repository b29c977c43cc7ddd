package inmemdb

import (
	"sort"

	"github.com/trezcool/masomo/core/course"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ course.EnrollmentRepository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) course.EnrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(e course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, row := range repo.db.table {
		if row.UserID == e.UserID && row.CourseID == e.CourseID {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
	}
	e.ID = newID()
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *enrollmentRepository) QueryEnrollments(userID string) ([]course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, row := range repo.db.table {
		if row.UserID == userID {
			enrollments = append(enrollments, *row)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		if enrollments[i].CreatedAt.Equal(enrollments[j].CreatedAt) {
			return enrollments[i].ID < enrollments[j].ID
		}
		return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt)
	})
	return enrollments, nil
}
