package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	// un-authed endpoints
	cg := g.Group("/course")
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)

	// admin endpoints
	cg.POST("", api.createCourse, jwt, adminMiddleware)
	cg.DELETE("/:id", api.destroyCourse, jwt, adminMiddleware)

	mg := g.Group("/modules", jwt)
	mg.GET("/:id", api.queryModules)
	mg.POST("", api.createModule, adminMiddleware)
	mg.DELETE("/:id", api.destroyModule, adminMiddleware)

	lg := g.Group("/lectures", jwt)
	lg.GET("", api.queryLectures)
	lg.GET("/:id", api.retrieveLecture)
	lg.POST("", api.createLecture, adminMiddleware)
	lg.DELETE("/:id", api.destroyLecture, adminMiddleware)
}

func (api *courseApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return respond(ctx, http.StatusOK, courses, "")
}

func (api *courseApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return respond(ctx, http.StatusOK, c, "")
}

func (api *courseApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return respond(ctx, http.StatusCreated, c, "Course created")
}

func (api *courseApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryModules(ctx echo.Context) error {
	mods, err := api.svc.QueryModules(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	return respond(ctx, http.StatusOK, mods, "")
}

func (api *courseApi) createModule(ctx echo.Context) error {
	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return respond(ctx, http.StatusCreated, mod, "Module created")
}

func (api *courseApi) destroyModule(ctx echo.Context) error {
	if err := api.svc.DeleteModule(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryLectures(ctx echo.Context) error {
	filter := new(course.LectureFilter)
	if err := ctx.Bind(filter); err != nil {
		return respond(ctx, http.StatusOK, []course.Lecture{}, "")
	}
	lectures, err := api.svc.QueryLectures(*filter)
	if err != nil {
		return errors.Wrap(err, "querying lectures")
	}
	return respond(ctx, http.StatusOK, lectures, "")
}

func (api *courseApi) retrieveLecture(ctx echo.Context) error {
	lec, err := api.svc.GetLectureByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lecture by ID")
	}
	return respond(ctx, http.StatusOK, lec, "")
}

func (api *courseApi) createLecture(ctx echo.Context) error {
	var data course.NewLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lec, err := api.svc.CreateLecture(data)
	if err != nil {
		return errors.Wrap(err, "creating lecture")
	}
	return respond(ctx, http.StatusCreated, lec, "Lecture created")
}

func (api *courseApi) destroyLecture(ctx echo.Context) error {
	if err := api.svc.DeleteLecture(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting lecture")
	}
	return ctx.NoContent(http.StatusNoContent)
}
