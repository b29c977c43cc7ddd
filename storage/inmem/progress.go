package inmemdb

import (
	"github.com/trezcool/masomo/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) CompletedLectureIDs(userID string, lectureIDs []string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	done := repo.db.table[userID]
	ids := make([]string, 0, len(done))
	for _, id := range lectureIDs {
		if _, ok := done[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (repo *progressRepository) MarkCompleted(userID, lectureID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	done, ok := repo.db.table[userID]
	if !ok {
		done = make(map[string]struct{})
		repo.db.table[userID] = done
	}
	done[lectureID] = struct{}{}
	return nil
}
