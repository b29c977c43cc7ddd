package inmemdb

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/user"
)

// SeedPassword is the password of the seeded users.
const SeedPassword = "Admin123"

// Seeded is what Seed created.
type Seeded struct {
	Admin   user.User
	Learner user.User
	Course  course.Course // nested
}

// Seed fills db with an admin, a learner and a two-module demo course.
func Seed(db *DB) (Seeded, error) {
	var seeded Seeded
	usrRepo := NewUserRepository(db)
	courseSvc := course.NewService(NewCourseRepository(db), NewEnrollmentRepository(db))

	now := time.Now().UTC()
	for _, u := range []struct {
		dst   *user.User
		name  string
		email string
		role  string
	}{
		{&seeded.Admin, "Admin", "admin@gmail.com", user.RoleAdmin},
		{&seeded.Learner, "Munir", "munir@gmail.com", user.RoleUser},
	} {
		usr := user.User{Name: u.name, Email: u.email, Role: u.role, CreatedAt: now}
		if err := usr.SetPassword(SeedPassword); err != nil {
			return Seeded{}, errors.Wrap(err, "hashing seed password")
		}
		created, err := usrRepo.CreateUser(usr)
		if err != nil {
			return Seeded{}, errors.Wrapf(err, "creating %s", u.email)
		}
		*u.dst = created
	}

	crs, err := courseSvc.Create(course.NewCourse{
		Title:       "Go Fundamentals",
		Thumbnail:   "https://picsum.photos/seed/golang/640/360",
		Description: "From hello world to goroutines.",
		Price:       49,
	})
	if err != nil {
		return Seeded{}, errors.Wrap(err, "creating demo course")
	}

	outline := []struct {
		title    string
		lectures []string
	}{
		{"Getting Started", []string{"Installing Go", "Hello, World", "Packages and Modules"}},
		{"Concurrency", []string{"Goroutines", "Channels"}},
	}
	for _, m := range outline {
		mod, err := courseSvc.CreateModule(course.NewModule{CourseID: crs.ID, Title: m.title})
		if err != nil {
			return Seeded{}, errors.Wrapf(err, "creating module %q", m.title)
		}
		for i, title := range m.lectures {
			_, err := courseSvc.CreateLecture(course.NewLecture{
				ModuleID: mod.ID,
				Title:    title,
				VideoURL: fmt.Sprintf("https://www.youtube.com/watch?v=demo-%d-%d", mod.ModuleNumber, i+1),
				PDFNotes: []string{},
			})
			if err != nil {
				return Seeded{}, errors.Wrapf(err, "creating lecture %q", title)
			}
		}
	}

	seeded.Course, err = courseSvc.GetByID(crs.ID)
	return seeded, errors.Wrap(err, "reading demo course")
}
