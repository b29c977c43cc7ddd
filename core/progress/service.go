package progress

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
)

type (
	// Repository stores the completions of every learner.
	Repository interface {
		// CompletedLectureIDs returns the subset of lectureIDs userID completed.
		CompletedLectureIDs(userID string, lectureIDs []string) ([]string, error)
		// MarkCompleted is idempotent.
		MarkCompleted(userID, lectureID string) error
	}

	LectureGetter interface {
		GetLectureByID(id string) (course.Lecture, error)
	}

	// Service is the server side of the progress tracker.
	Service struct {
		repo     Repository
		lectures LectureGetter
	}
)

func NewService(repo Repository, lectures LectureGetter) *Service {
	return &Service{repo: repo, lectures: lectures}
}

func (svc *Service) Completed(userID string, lectureIDs []string) ([]string, error) {
	if len(lectureIDs) == 0 {
		return []string{}, nil
	}
	return svc.repo.CompletedLectureIDs(userID, lectureIDs)
}

// Complete records that userID completed lectureID; completing twice is not an error.
func (svc *Service) Complete(userID, lectureID string) error {
	if _, err := svc.lectures.GetLectureByID(lectureID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.MarkCompleted(userID, lectureID), "marking lecture completed")
}
