package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
)

type enrollmentApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := enrollmentApi{svc: svc, validate: validate}

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.enroll)
	eg.GET("", api.query)
	eg.GET("/enrolledCourse", api.queryCourses)
}

type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	e, err := api.svc.Enroll(claims.Subject, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return respond(ctx, http.StatusCreated, e, "Enrolled successfully")
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	enrollments, err := api.svc.Enrollments(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return respond(ctx, http.StatusOK, enrollments, "")
}

func (api *enrollmentApi) queryCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	courses, err := api.svc.EnrolledCourses(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrolled courses")
	}
	return respond(ctx, http.StatusOK, courses, "")
}
