package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/progress"
)

type progressApi struct {
	svc      *progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, validate *validator.Validate) {
	api := progressApi{svc: svc, validate: validate}

	pg := g.Group("/progress", jwt)
	pg.POST("/list", api.list)
	pg.POST("/complete", api.complete)
}

type (
	ProgressQueryRequest struct {
		LectureIDs []string `json:"lectureIds" validate:"dive,required"`
	}

	CompleteRequest struct {
		LectureID string `json:"lectureId" validate:"required"`
	}
)

func (api *progressApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data ProgressQueryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressQueryRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	ids, err := api.svc.Completed(claims.Subject, data.LectureIDs)
	if err != nil {
		return errors.Wrap(err, "querying completed lectures")
	}
	return respond(ctx, http.StatusOK, ids, "")
}

func (api *progressApi) complete(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data CompleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.svc.Complete(claims.Subject, data.LectureID); err != nil {
		return errors.Wrap(err, "completing lecture")
	}
	return respond(ctx, http.StatusOK, nil, "Lecture marked as completed")
}
