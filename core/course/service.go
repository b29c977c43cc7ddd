package course

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")

	nowFunc = time.Now // mockable
)

// Enrollment grants a learner access to a Course.
type Enrollment struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type (
	// Repository stores the course catalog. Lookups miss with a *NotFoundError.
	Repository interface {
		QueryAllCourses() ([]Course, error)
		// GetCourseByID returns the course with its modules and lectures.
		GetCourseByID(id string) (Course, error)
		CreateCourse(c Course) (Course, error)
		// DeleteCourse deletes the course with its modules and lectures.
		DeleteCourse(id string) error

		QueryModules(courseID string) ([]Module, error)
		CreateModule(courseID string, mod Module) (Module, error)
		DeleteModule(id string) error

		QueryLectures(filter LectureFilter) ([]Lecture, error)
		GetLectureByID(id string) (Lecture, error)
		CreateLecture(moduleID string, lec Lecture) (Lecture, error)
		DeleteLecture(id string) error
	}

	EnrollmentRepository interface {
		// CreateEnrollment fails with ErrAlreadyEnrolled on a duplicate (user, course) pair.
		CreateEnrollment(e Enrollment) (Enrollment, error)
		QueryEnrollments(userID string) ([]Enrollment, error)
	}

	Service struct {
		repo        Repository
		enrollments EnrollmentRepository
	}
)

func NewService(repo Repository, enrollments EnrollmentRepository) *Service {
	return &Service{repo: repo, enrollments: enrollments}
}

// QueryAll returns the catalog without module contents.
func (svc *Service) QueryAll() ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses()
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Modules = nil
	}
	return courses, nil
}

func (svc *Service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) Create(nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(Course{
		Title:       nc.Title,
		Thumbnail:   nc.Thumbnail,
		Description: nc.Description,
		Price:       nc.Price,
	})
}

func (svc *Service) Delete(id string) error {
	return svc.repo.DeleteCourse(id)
}

func (svc *Service) QueryModules(courseID string) ([]Module, error) {
	if _, err := svc.repo.GetCourseByID(courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryModules(courseID)
}

// CreateModule appends a module to its course; an unset ModuleNumber follows the last module.
func (svc *Service) CreateModule(nm NewModule) (Module, error) {
	mods, err := svc.QueryModules(nm.CourseID)
	if err != nil {
		return Module{}, err
	}
	number := nm.ModuleNumber
	if number == 0 {
		for _, mod := range mods {
			if mod.ModuleNumber > number {
				number = mod.ModuleNumber
			}
		}
		number++
	}
	return svc.repo.CreateModule(nm.CourseID, Module{Title: nm.Title, ModuleNumber: number, Lectures: []Lecture{}})
}

func (svc *Service) DeleteModule(id string) error {
	return svc.repo.DeleteModule(id)
}

func (svc *Service) QueryLectures(filter LectureFilter) ([]Lecture, error) {
	return svc.repo.QueryLectures(filter)
}

func (svc *Service) GetLectureByID(id string) (Lecture, error) {
	return svc.repo.GetLectureByID(id)
}

// CreateLecture appends a lecture to its module; an unset LectureNumber follows the last lecture.
func (svc *Service) CreateLecture(nl NewLecture) (Lecture, error) {
	lectures, err := svc.repo.QueryLectures(LectureFilter{ModuleID: nl.ModuleID})
	if err != nil {
		return Lecture{}, err
	}
	number := nl.LectureNumber
	if number == 0 {
		for _, lec := range lectures {
			if lec.LectureNumber > number {
				number = lec.LectureNumber
			}
		}
		number++
	}
	return svc.repo.CreateLecture(nl.ModuleID, Lecture{
		Title:         nl.Title,
		LectureNumber: number,
		VideoURL:      nl.VideoURL,
		PDFNotes:      nl.PDFNotes,
	})
}

func (svc *Service) DeleteLecture(id string) error {
	return svc.repo.DeleteLecture(id)
}

// Enroll enrolls userID in courseID.
func (svc *Service) Enroll(userID, courseID string) (Enrollment, error) {
	if _, err := svc.repo.GetCourseByID(courseID); err != nil {
		return Enrollment{}, err
	}
	return svc.enrollments.CreateEnrollment(Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: nowFunc().UTC(),
	})
}

func (svc *Service) Enrollments(userID string) ([]Enrollment, error) {
	return svc.enrollments.QueryEnrollments(userID)
}

// EnrolledCourses returns the courses userID is enrolled in, deleted courses skipped.
func (svc *Service) EnrolledCourses(userID string) ([]Course, error) {
	enrollments, err := svc.enrollments.QueryEnrollments(userID)
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(enrollments))
	for _, e := range enrollments {
		c, err := svc.repo.GetCourseByID(e.CourseID)
		if err != nil {
			var nfErr *NotFoundError
			if errors.As(err, &nfErr) {
				continue
			}
			return nil, errors.Wrap(err, "finding enrolled course")
		}
		c.Modules = nil
		courses = append(courses, c)
	}
	return courses, nil
}
