package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/enrollment"
)

type enrollmentApi struct {
	svc       *enrollment.Service
	courseSvc *course.Service
	validate  *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := enrollmentApi{
		svc:       deps.EnrollSvc,
		courseSvc: deps.CourseSvc,
		validate:  deps.Validate,
	}

	eg := g.Group("/enrollments", jwt)
	eg.POST("/enroll", api.enroll, studentMiddleware())
	eg.GET("", api.queryOwn, studentMiddleware())
	eg.GET("/:courseId", api.retrieveDetail, studentMiddleware())
	eg.PUT("/:courseId/progress", api.updateProgress, studentMiddleware())
	eg.DELETE("/:courseId", api.unenroll, studentMiddleware())

	eg.GET("/course/:id", api.queryByCourse, instructorMiddleware())
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.Enroll(ctx.Request().Context(), uid, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) queryOwn(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.QueryByStudent(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) retrieveDetail(ctx echo.Context) error {
	courseID, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	det, err := api.svc.GetDetail(ctx.Request().Context(), uid, courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, det)
}

func (api *enrollmentApi) queryByCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	// instructors only see their own courses' rosters
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if !claims.IsAdmin {
		uid, err := claims.UserID()
		if err != nil {
			return err
		}
		if crs.InstructorID != uid {
			return errHttpForbidden
		}
	}

	enrs, err := api.svc.QueryByCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying course enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) updateProgress(ctx echo.Context) error {
	courseID, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}

	var data enrollment.UpdateProgress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.UpdateProgress(ctx.Request().Context(), uid, courseID, data.Progress)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) unenroll(ctx echo.Context) error {
	courseID, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unenroll(ctx.Request().Context(), uid, courseID); err != nil {
		return errors.Wrap(err, "unenrolling")
	}
	return ctx.NoContent(http.StatusNoContent)
}
