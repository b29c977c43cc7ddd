package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// Lecture is a single playable unit (video + optional documents) within a Module.
type Lecture struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	LectureNumber int      `json:"lectureNumber,omitempty"` // 0: unset
	VideoURL      string   `json:"videoUrl"`
	PDFNotes      []string `json:"pdfNotes"`
}

// Module is an ordered group of Lectures within a Course.
type Module struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	ModuleNumber int       `json:"moduleNumber"`
	Lectures     []Lecture `json:"lectures"`
}

// Course is read-only to the player; it is fetched once per player session.
type Course struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Modules     []Module `json:"modules,omitempty"`
}

// LectureCount returns the number of lectures across all modules.
func (c Course) LectureCount() int {
	var n int
	for _, mod := range c.Modules {
		n += len(mod.Lectures)
	}
	return n
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string  `json:"title" validate:"required"`
	Thumbnail   string  `json:"thumbnail" validate:"required,mediaurl"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// NewModule contains information needed to add a Module to a Course.
// ModuleNumber is assigned by the API when left empty.
type NewModule struct {
	CourseID     string `json:"courseId" validate:"required"`
	Title        string `json:"title" validate:"required"`
	ModuleNumber int    `json:"moduleNumber,omitempty" validate:"gte=0"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.CourseID = core.CleanString(nm.CourseID)
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

// NewLecture contains information needed to add a Lecture to a Module.
// LectureNumber is assigned by the API when left empty.
type NewLecture struct {
	ModuleID      string   `json:"moduleId" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	VideoURL      string   `json:"videoUrl" validate:"required,mediaurl"`
	LectureNumber int      `json:"lectureNumber,omitempty" validate:"gte=0"`
	PDFNotes      []string `json:"pdfNotes" validate:"dive,mediaurl"`
}

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	nl.ModuleID = core.CleanString(nl.ModuleID)
	nl.Title = core.CleanString(nl.Title)
	nl.VideoURL = core.CleanString(nl.VideoURL)
	notes := make([]string, 0, len(nl.PDFNotes))
	for _, note := range nl.PDFNotes {
		if note = core.CleanString(note); note != "" {
			notes = append(notes, note)
		}
	}
	nl.PDFNotes = notes
	return validate.Struct(nl)
}

// LectureFilter narrows lecture listings; empty fields match everything.
type LectureFilter struct {
	CourseID string `query:"course"`
	ModuleID string `query:"module"`
}
