package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/exam"
)

type examApi struct {
	svc       *exam.Service
	courseSvc *course.Service
	validate  *validator.Validate
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := examApi{
		svc:       deps.ExamSvc,
		courseSvc: deps.CourseSvc,
		validate:  deps.Validate,
	}

	xg := g.Group("/exams", jwt)
	xg.POST("", api.create, instructorMiddleware())
	xg.GET("/:id", api.retrieve)
	xg.PUT("/:id", api.update, instructorMiddleware())
	xg.DELETE("/:id", api.destroy, instructorMiddleware())

	xg.POST("/questions", api.createQuestion, instructorMiddleware())
	xg.POST("/:id/questions", api.attachQuestion, instructorMiddleware())
	xg.GET("/:id/questions", api.queryQuestions)
	xg.DELETE("/:id/questions/:questionId", api.detachQuestion, instructorMiddleware())

	xg.POST("/:id/attempt", api.startAttempt, studentMiddleware())
	xg.PUT("/attempt/:id/submit", api.submitAttempt, studentMiddleware())
	xg.GET("/:id/attempts", api.queryAttempts)

	g.GET("/courses/:id/exams", api.queryByCourse, jwt)
}

// checkExamAccess ensures the caller owns the exam's course or is an admin.
func (api *examApi) checkExamAccess(ctx echo.Context, exm exam.Exam) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}
	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), exm.CourseID)
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

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.courseSvc.GetByID(ctx.Request().Context(), data.CourseID)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
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

	exm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, exm)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) queryByCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.courseSvc.GetByID(ctx.Request().Context(), id); err != nil {
		return err
	}
	exms, err := api.svc.QueryByCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying course exams")
	}
	if exms == nil {
		exms = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exms)
}

func (api *examApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkExamAccess(ctx, exm); err != nil {
		return err
	}

	var data exam.UpdateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err := data.Validate(exm, api.validate); err != nil {
		return err
	}

	exm, err = api.svc.Update(ctx.Request().Context(), exm, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkExamAccess(ctx, exm); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *examApi) createQuestion(ctx echo.Context) error {
	var data exam.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qst, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, qst)
}

func (api *examApi) attachQuestion(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkExamAccess(ctx, exm); err != nil {
		return err
	}

	var data exam.AddExamQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddExamQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.AttachQuestion(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "attaching question")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *examApi) queryQuestions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qsts, err := api.svc.QueryQuestions(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying exam questions")
	}
	if qsts == nil {
		qsts = []exam.Question{}
	}
	return ctx.JSON(http.StatusOK, qsts)
}

func (api *examApi) detachQuestion(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	questionID, err := intParam(ctx, "questionId")
	if err != nil {
		return err
	}
	exm, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkExamAccess(ctx, exm); err != nil {
		return err
	}
	if err := api.svc.DetachQuestion(ctx.Request().Context(), id, questionID); err != nil {
		return errors.Wrap(err, "detaching question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Attempts

func (api *examApi) startAttempt(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	att, err := api.svc.StartAttempt(ctx.Request().Context(), uid, id)
	if err != nil {
		return errors.Wrap(err, "starting attempt")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *examApi) submitAttempt(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	att, err := api.svc.GetAttempt(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	// students may only submit their own attempts
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	if att.StudentID != uid {
		return errHttpForbidden
	}

	var data exam.SubmitAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitAttempt")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.SubmitAttempt(ctx.Request().Context(), att, data)
	if err != nil {
		return errors.Wrap(err, "submitting attempt")
	}
	return ctx.JSON(http.StatusOK, res)
}

// queryAttempts lists attempts on an exam: students see their own, the
// course's instructor and admins see everyone's.
func (api *examApi) queryAttempts(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var atts []exam.Attempt
	if claims.IsStudent {
		uid, err := claims.UserID()
		if err != nil {
			return err
		}
		atts, err = api.svc.QueryAttempts(ctx.Request().Context(), uid, id)
		if err != nil {
			return errors.Wrap(err, "querying attempts")
		}
	} else {
		exm, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return err
		}
		if err := api.checkExamAccess(ctx, exm); err != nil {
			return err
		}
		atts, err = api.svc.QueryExamAttempts(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "querying exam attempts")
		}
	}
	if atts == nil {
		atts = []exam.Attempt{}
	}
	return ctx.JSON(http.StatusOK, atts)
}
