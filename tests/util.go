package testutil

import (
	"fmt"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
)

// NewCourse builds a course out of modules, numbering them in the given order.
func NewCourse(id string, modules ...course.Module) course.Course {
	for i := range modules {
		if modules[i].ModuleNumber == 0 {
			modules[i].ModuleNumber = i + 1
		}
	}
	return course.Course{
		ID:        id,
		Title:     "Course " + id,
		Thumbnail: fmt.Sprintf("https://img.test/%s.png", id),
		Modules:   modules,
	}
}

// NewModule builds a module whose lectures are numbered in the given order.
func NewModule(id string, lectureIDs ...string) course.Module {
	lectures := make([]course.Lecture, 0, len(lectureIDs))
	for i, lid := range lectureIDs {
		lectures = append(lectures, NewLecture(lid, i+1))
	}
	return course.Module{
		ID:       id,
		Title:    "Module " + id,
		Lectures: lectures,
	}
}

func NewLecture(id string, number int) course.Lecture {
	return course.Lecture{
		ID:            id,
		Title:         "Lecture " + id,
		LectureNumber: number,
		VideoURL:      "https://videos.test/" + id,
		PDFNotes:      []string{},
	}
}

// NopLogger discards every log record.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
