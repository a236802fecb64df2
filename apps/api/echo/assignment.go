package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/assignment"
	"github.com/educert/backend/core/course"
)

type assignmentApi struct {
	svc       *assignment.Service
	courseSvc *course.Service
	validate  *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := assignmentApi{
		svc:       deps.AssignSvc,
		courseSvc: deps.CourseSvc,
		validate:  deps.Validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, instructorMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, instructorMiddleware())
	ag.DELETE("/:id", api.destroy, instructorMiddleware())

	ag.POST("/:id/submit", api.submit, studentMiddleware())
	ag.GET("/:id/submissions", api.querySubmissions, instructorMiddleware())

	g.GET("/lectures/:id/assignments", api.queryByLecture, jwt)

	sg := g.Group("/submissions", jwt)
	sg.GET("/mine", api.queryOwnSubmissions, studentMiddleware())
	sg.PUT("/:id/grade", api.grade, instructorMiddleware())
}

// checkAssignmentAccess walks up the lecture's module to the owning course.
func (api *assignmentApi) checkAssignmentAccess(ctx echo.Context, asg assignment.Assignment) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}
	lec, err := api.courseSvc.GetLecture(ctx.Request().Context(), asg.LectureID)
	if err != nil {
		return err
	}
	mod, err := api.courseSvc.GetModule(ctx.Request().Context(), lec.ModuleID)
	if err != nil {
		return err
	}
	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), mod.CourseID)
	if err != nil {
		return err
	}
	uid, err := claims.UserID()
	if err != nil {
		return err
	}
	if crs.InstructorID != uid {
		return errHttpForbidden
	}
	return nil
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the lecture must exist and belong to the caller
	if _, err := api.courseSvc.GetLecture(ctx.Request().Context(), data.LectureID); err != nil {
		return err
	}
	if err := api.checkAssignmentAccess(ctx, assignment.Assignment{LectureID: data.LectureID}); err != nil {
		return err
	}

	asg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	asg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) queryByLecture(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.courseSvc.GetLecture(ctx.Request().Context(), id); err != nil {
		return err
	}
	asgs, err := api.svc.QueryByLecture(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying lecture assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	asg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkAssignmentAccess(ctx, asg); err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(asg, api.validate); err != nil {
		return err
	}

	asg, err = api.svc.Update(ctx.Request().Context(), asg, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	asg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkAssignmentAccess(ctx, asg); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Submissions

func (api *assignmentApi) submit(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Submit(ctx.Request().Context(), uid, id, data.SubmissionContent)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	asg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkAssignmentAccess(ctx, asg); err != nil {
		return err
	}

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) queryOwnSubmissions(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	subs, err := api.svc.QueryStudentSubmissions(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	sub, err := api.svc.GetSubmissionByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	asg, err := api.svc.GetByID(ctx.Request().Context(), sub.AssignmentID)
	if err != nil {
		return err
	}
	if err := api.checkAssignmentAccess(ctx, asg); err != nil {
		return err
	}

	var data assignment.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err = api.svc.Grade(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
