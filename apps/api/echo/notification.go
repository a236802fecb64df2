package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := notificationApi{
		svc:      deps.NotifSvc,
		validate: deps.Validate,
	}

	ng := g.Group("/notifications", jwt)
	ng.POST("", api.broadcast, adminMiddleware())
	ng.GET("", api.queryOwn)
	ng.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *notificationApi) broadcast(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	notifs, err := api.svc.Broadcast(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "broadcasting notification")
	}
	return ctx.JSON(http.StatusCreated, notifs)
}

func (api *notificationApi) queryOwn(ctx echo.Context) error {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	notifs, err := api.svc.QueryByUser(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	notif, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	// users only see their own notifications
	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	if notif.UserID != uid {
		return errHttpNotFound
	}

	notif, err = api.svc.MarkRead(ctx.Request().Context(), notif)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}
