package inmemdb

import (
	"sort"

	"github.com/trezcool/masomo/core/course"
)

type courseRepository struct {
	db *catalogTables
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.catalog}
}

func (repo *courseRepository) nextOrder() int {
	repo.db.serial++
	return repo.db.serial
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*courseRow, 0, len(repo.db.courses))
	for _, row := range repo.db.courses {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.nested(row))
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	row, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, &course.NotFoundError{Kind: "course", ID: id}
	}
	return repo.nested(row), nil
}

// nested returns the course of row with its modules and lectures. Caller must hold the lock.
func (repo *courseRepository) nested(row *courseRow) course.Course {
	c := row.Course
	c.Modules = repo.modules(c.ID)
	for i := range c.Modules {
		c.Modules[i].Lectures = repo.lectures(course.LectureFilter{ModuleID: c.Modules[i].ID})
	}
	return c
}

func (repo *courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = newID()
	c.Modules = nil
	repo.db.courses[c.ID] = &courseRow{Course: c, order: repo.nextOrder()}
	c.Modules = []course.Module{}
	return c, nil
}

func (repo *courseRepository) DeleteCourse(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return &course.NotFoundError{Kind: "course", ID: id}
	}
	for modID, mod := range repo.db.modules {
		if mod.courseID == id {
			repo.deleteModule(modID)
		}
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) QueryModules(courseID string) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := repo.modules(courseID)
	for i := range mods {
		mods[i].Lectures = repo.lectures(course.LectureFilter{ModuleID: mods[i].ID})
	}
	return mods, nil
}

// modules returns the modules of courseID in insertion order, without lectures.
// Caller must hold the lock.
func (repo *courseRepository) modules(courseID string) []course.Module {
	rows := make([]*moduleRow, 0)
	for _, row := range repo.db.modules {
		if row.courseID == courseID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	mods := make([]course.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.Module)
	}
	return mods
}

func (repo *courseRepository) CreateModule(courseID string, mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return course.Module{}, &course.NotFoundError{Kind: "course", ID: courseID}
	}
	mod.ID = newID()
	mod.Lectures = nil
	repo.db.modules[mod.ID] = &moduleRow{Module: mod, courseID: courseID, order: repo.nextOrder()}
	mod.Lectures = []course.Lecture{}
	return mod, nil
}

func (repo *courseRepository) DeleteModule(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[id]; !ok {
		return &course.NotFoundError{Kind: "module", ID: id}
	}
	repo.deleteModule(id)
	return nil
}

// deleteModule deletes module id and its lectures. Caller must hold the lock.
func (repo *courseRepository) deleteModule(id string) {
	for lecID, lec := range repo.db.lectures {
		if lec.moduleID == id {
			delete(repo.db.lectures, lecID)
		}
	}
	delete(repo.db.modules, id)
}

func (repo *courseRepository) QueryLectures(filter course.LectureFilter) ([]course.Lecture, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.lectures(filter), nil
}

// lectures returns the lectures matching filter in insertion order. Caller must hold the lock.
func (repo *courseRepository) lectures(filter course.LectureFilter) []course.Lecture {
	rows := make([]*lectureRow, 0)
	for _, row := range repo.db.lectures {
		if filter.ModuleID != "" && row.moduleID != filter.ModuleID {
			continue
		}
		if filter.CourseID != "" {
			if mod, ok := repo.db.modules[row.moduleID]; !ok || mod.courseID != filter.CourseID {
				continue
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	lectures := make([]course.Lecture, 0, len(rows))
	for _, row := range rows {
		lec := row.Lecture
		lec.PDFNotes = append([]string{}, lec.PDFNotes...)
		lectures = append(lectures, lec)
	}
	return lectures
}

func (repo *courseRepository) GetLectureByID(id string) (course.Lecture, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	row, ok := repo.db.lectures[id]
	if !ok {
		return course.Lecture{}, &course.NotFoundError{Kind: "lecture", ID: id}
	}
	lec := row.Lecture
	lec.PDFNotes = append([]string{}, lec.PDFNotes...)
	return lec, nil
}

func (repo *courseRepository) CreateLecture(moduleID string, lec course.Lecture) (course.Lecture, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.modules[moduleID]; !ok {
		return course.Lecture{}, &course.NotFoundError{Kind: "module", ID: moduleID}
	}
	lec.ID = newID()
	lec.PDFNotes = append([]string{}, lec.PDFNotes...)
	repo.db.lectures[lec.ID] = &lectureRow{Lecture: lec, moduleID: moduleID, order: repo.nextOrder()}
	return lec, nil
}

func (repo *courseRepository) DeleteLecture(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.lectures[id]; !ok {
		return &course.NotFoundError{Kind: "lecture", ID: id}
	}
	delete(repo.db.lectures, id)
	return nil
}
