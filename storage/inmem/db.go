package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/user"
)

type (
	DB struct {
		user       *userTable
		catalog    *catalogTables
		enrollment *enrollmentTable
		progress   *progressTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	// catalogTables share one lock: deleting a course cascades to its modules and lectures.
	catalogTables struct {
		sync.RWMutex
		serial   int // insertion order
		courses  map[string]*courseRow
		modules  map[string]*moduleRow
		lectures map[string]*lectureRow
	}

	courseRow struct {
		course.Course // Modules unused
		order         int
	}

	moduleRow struct {
		course.Module // Lectures unused
		courseID      string
		order         int
	}

	lectureRow struct {
		course.Lecture
		moduleID string
		order    int
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*course.Enrollment
	}

	progressTable struct {
		sync.RWMutex
		table map[string]map[string]struct{} // user ID -> completed lecture IDs
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		catalog: &catalogTables{
			courses:  make(map[string]*courseRow),
			modules:  make(map[string]*moduleRow),
			lectures: make(map[string]*lectureRow),
		},
		enrollment: &enrollmentTable{table: make(map[string]*course.Enrollment)},
		progress:   &progressTable{table: make(map[string]map[string]struct{})},
	}
	return db, nil
}

func newID() string {
	return uuid.New().String()
}
