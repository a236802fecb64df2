package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/report"
)

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := reportApi{
		svc:      deps.ReportSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.DELETE("/:id", api.destroy)

	rg.POST("/course-popularity", api.coursePopularity)
	rg.POST("/course-rating", api.courseRating)
	rg.POST("/student-progress", api.studentProgress)
}

// Handlers

func (api *reportApi) query(ctx echo.Context) error {
	rpts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if rpts == nil {
		rpts = []report.Report{}
	}
	return ctx.JSON(http.StatusOK, rpts)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	rpt, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *reportApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting report")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *reportApi) coursePopularity(ctx echo.Context) error {
	var data report.PopularityParams
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PopularityParams")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	rpt, err := api.svc.GenerateCoursePopularity(ctx.Request().Context(), data, uid)
	if err != nil {
		return errors.Wrap(err, "generating course popularity report")
	}
	return ctx.JSON(http.StatusCreated, rpt)
}

func (api *reportApi) courseRating(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	rpt, err := api.svc.GenerateCourseRating(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "generating course rating report")
	}
	return ctx.JSON(http.StatusCreated, rpt)
}

func (api *reportApi) studentProgress(ctx echo.Context) error {
	var data report.ProgressParams
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressParams")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	rpt, err := api.svc.GenerateStudentProgress(ctx.Request().Context(), data, uid)
	if err != nil {
		return errors.Wrap(err, "generating student progress report")
	}
	return ctx.JSON(http.StatusCreated, rpt)
}
