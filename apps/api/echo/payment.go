package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/course"
	"github.com/educert/backend/core/payment"
)

type paymentApi struct {
	svc       *payment.Service
	courseSvc *course.Service
	validate  *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := paymentApi{
		svc:       deps.PaymentSvc,
		courseSvc: deps.CourseSvc,
		validate:  deps.Validate,
	}

	pg := g.Group("/payments", jwt)
	pg.POST("", api.create, studentMiddleware())
	pg.GET("", api.queryOwn, studentMiddleware())
	pg.GET("/course/:id", api.queryByCourse, instructorMiddleware())
	pg.PUT("/:id/refund", api.refund, adminMiddleware())
}

// Handlers

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	pmt, err := api.svc.Record(ctx.Request().Context(), data, uid)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) queryOwn(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	pmts, err := api.svc.QueryByStudent(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if pmts == nil {
		pmts = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *paymentApi) queryByCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	// instructors only see payments on their own courses
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

	pmts, err := api.svc.QueryByCourse(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying course payments")
	}
	if pmts == nil {
		pmts = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *paymentApi) refund(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	pmt, err := api.svc.Refund(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "refunding payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}
