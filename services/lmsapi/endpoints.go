package lmsapi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/player"
	"github.com/trezcool/masomo/core/user"
)

var (
	_ player.CourseCatalog   = (*Client)(nil)
	_ player.ProgressTracker = (*Client)(nil)
)

// Auth

// Login returns the access token of creds.
func (c *Client) Login(ctx context.Context, creds user.Credentials) (string, error) {
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.post(ctx, "/auth/login", creds, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", errors.New("login answer holds no access token")
	}
	return data.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, nu user.NewUser) (user.User, error) {
	var usr user.User
	err := c.post(ctx, "/auth/register", nu, &usr)
	return usr, err
}

// Catalog

func (c *Client) ListCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := c.get(ctx, "/course", nil, &courses)
	return courses, err
}

// FetchCourseDetail returns the course with its modules and lectures.
func (c *Client) FetchCourseDetail(ctx context.Context, courseID string) (course.Course, error) {
	var crs course.Course
	err := c.get(ctx, "/course/{id}", map[string]string{"id": courseID}, &crs)
	return crs, err
}

// Progress

// FetchCompletedLectureIDs returns the subset of lectureIDs the learner completed.
// Progress is keyed by lecture: courseID only scopes the call.
func (c *Client) FetchCompletedLectureIDs(ctx context.Context, courseID string, lectureIDs []string) ([]string, error) {
	body := struct {
		LectureIDs []string `json:"lectureIds"`
	}{LectureIDs: lectureIDs}
	ids := make([]string, 0)
	if err := c.post(ctx, "/progress/list", body, &ids); err != nil {
		return nil, errors.Wrapf(err, "listing progress of course %q", courseID)
	}
	return ids, nil
}

// PersistCompletion marks lectureID completed; the API accepts repeats.
func (c *Client) PersistCompletion(ctx context.Context, lectureID string) error {
	body := struct {
		LectureID string `json:"lectureId"`
	}{LectureID: lectureID}
	return c.post(ctx, "/progress/complete", body, nil)
}

// Enrollments

// Enroll fails with ErrAlreadyEnrolled when the learner is already enrolled.
func (c *Client) Enroll(ctx context.Context, courseID string) (course.Enrollment, error) {
	body := struct {
		CourseID string `json:"courseId"`
	}{CourseID: courseID}
	var e course.Enrollment
	if err := c.post(ctx, "/enrollments", body, &e); err != nil {
		if HasStatus(err, http.StatusConflict) {
			return course.Enrollment{}, ErrAlreadyEnrolled
		}
		return course.Enrollment{}, err
	}
	return e, nil
}

func (c *Client) ListEnrollments(ctx context.Context) ([]course.Enrollment, error) {
	enrollments := make([]course.Enrollment, 0)
	err := c.get(ctx, "/enrollments", nil, &enrollments)
	return enrollments, err
}

func (c *Client) ListEnrolledCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := c.get(ctx, "/enrollments/enrolledCourse", nil, &courses)
	return courses, err
}

// Admin

func (c *Client) CreateCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	var crs course.Course
	err := c.post(ctx, "/course", nc, &crs)
	return crs, err
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.delete(ctx, "/course/{id}", id)
}

func (c *Client) ListModules(ctx context.Context, courseID string) ([]course.Module, error) {
	mods := make([]course.Module, 0)
	err := c.get(ctx, "/modules/{id}", map[string]string{"id": courseID}, &mods)
	return mods, err
}

func (c *Client) CreateModule(ctx context.Context, nm course.NewModule) (course.Module, error) {
	var mod course.Module
	err := c.post(ctx, "/modules", nm, &mod)
	return mod, err
}

func (c *Client) DeleteModule(ctx context.Context, id string) error {
	return c.delete(ctx, "/modules/{id}", id)
}

func (c *Client) ListLectures(ctx context.Context, filter course.LectureFilter) ([]course.Lecture, error) {
	query := make(map[string]string, 2)
	if filter.CourseID != "" {
		query["course"] = filter.CourseID
	}
	if filter.ModuleID != "" {
		query["module"] = filter.ModuleID
	}
	lectures := make([]course.Lecture, 0)
	err := c.do(ctx, call{method: http.MethodGet, path: "/lectures", query: query, out: &lectures})
	return lectures, err
}

func (c *Client) GetLecture(ctx context.Context, id string) (course.Lecture, error) {
	var lec course.Lecture
	err := c.get(ctx, "/lectures/{id}", map[string]string{"id": id}, &lec)
	return lec, err
}

func (c *Client) CreateLecture(ctx context.Context, nl course.NewLecture) (course.Lecture, error) {
	var lec course.Lecture
	err := c.post(ctx, "/lectures", nl, &lec)
	return lec, err
}

func (c *Client) DeleteLecture(ctx context.Context, id string) error {
	return c.delete(ctx, "/lectures/{id}", id)
}

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := c.get(ctx, "/user", nil, &users)
	return users, err
}

func (c *Client) SetUserRole(ctx context.Context, id, role string) (user.User, error) {
	var usr user.User
	err := c.do(ctx, call{
		method:     http.MethodPatch,
		path:       "/user/{id}/role",
		pathParams: map[string]string{"id": id},
		body:       user.UpdateRole{Role: role},
		out:        &usr,
	})
	return usr, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/users/{id}", id)
}
