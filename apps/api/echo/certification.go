package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/certification"
)

type certificationApi struct {
	svc      *certification.Service
	validate *validator.Validate
}

func registerCertificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := certificationApi{
		svc:      deps.CertSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/certifications")

	// employers verify certificates without an account
	cg.GET("/verify", api.verify)

	ag := cg.Group("", jwt)
	ag.GET("", api.query)
	ag.GET("/mine", api.queryOwn, studentMiddleware())
	ag.POST("", api.create, adminMiddleware())
	ag.PUT("/:id", api.update, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
	ag.GET("/:id", api.retrieve)

	ag.POST("/:id/courses", api.associateCourse, adminMiddleware())
	ag.DELETE("/:id/courses/:courseId", api.dissociateCourse, adminMiddleware())
	ag.POST("/issue", api.issue, adminMiddleware())

	g.GET("/courses/:id/certifications", api.queryByCourse, jwt)
}

// Handlers

func (api *certificationApi) create(ctx echo.Context) error {
	var data certification.NewCertification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCertification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cert, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating certification")
	}
	return ctx.JSON(http.StatusCreated, cert)
}

func (api *certificationApi) query(ctx echo.Context) error {
	certs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying certifications")
	}
	if certs == nil {
		certs = []certification.Certification{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificationApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cert, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cert)
}

func (api *certificationApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cert, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data certification.UpdateCertification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCertification")
	}
	if err := data.Validate(cert, api.validate); err != nil {
		return err
	}

	cert, err = api.svc.Update(ctx.Request().Context(), cert, data)
	if err != nil {
		return errors.Wrap(err, "updating certification")
	}
	return ctx.JSON(http.StatusOK, cert)
}

func (api *certificationApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting certification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *certificationApi) associateCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data AssociateCourseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssociateCourseRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.AssociateCourse(ctx.Request().Context(), id, data.CourseID); err != nil {
		return errors.Wrap(err, "associating course")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *certificationApi) dissociateCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	courseID, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}
	if err := api.svc.DissociateCourse(ctx.Request().Context(), id, courseID); err != nil {
		return errors.Wrap(err, "dissociating course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *certificationApi) queryByCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	certs, err := api.svc.QueryByCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying course certifications")
	}
	if certs == nil {
		certs = []certification.Certification{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificationApi) issue(ctx echo.Context) error {
	var data certification.NewIssuance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIssuance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	iss, err := api.svc.Issue(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "issuing certification")
	}
	return ctx.JSON(http.StatusCreated, iss)
}

func (api *certificationApi) queryOwn(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	isss, err := api.svc.QueryStudentIssuances(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying issuances")
	}
	if isss == nil {
		isss = []certification.Issuance{}
	}
	return ctx.JSON(http.StatusOK, isss)
}

func (api *certificationApi) verify(ctx echo.Context) error {
	certificationID, err := intQueryParam(ctx, "certificationId")
	if err != nil {
		return err
	}
	studentID, err := intQueryParam(ctx, "studentId")
	if err != nil {
		return err
	}

	ver, err := api.svc.Verify(ctx.Request().Context(), studentID, certificationID)
	if err != nil {
		return errors.Wrap(err, "verifying certification")
	}
	return ctx.JSON(http.StatusOK, ver)
}

type AssociateCourseRequest struct {
	CourseID int `json:"courseId" validate:"required"`
}
