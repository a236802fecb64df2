package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educert/backend/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("", api.create, instructorMiddleware())
	cg.PUT("/:id", api.update, instructorMiddleware())
	cg.DELETE("/:id", api.destroy, instructorMiddleware())

	cg.GET("/:id/modules", api.queryModules)
	cg.POST("/:id/modules", api.createModule, instructorMiddleware())

	cg.GET("/:id/reviews", api.queryReviews)
	cg.POST("/:id/reviews", api.createReview, studentMiddleware())

	mg := g.Group("/modules", jwt)
	mg.GET("/:id/lectures", api.queryLectures)
	mg.POST("/:id/lectures", api.createLecture, instructorMiddleware())
	mg.PUT("/:id", api.updateModule, instructorMiddleware())
	mg.DELETE("/:id", api.destroyModule, instructorMiddleware())

	lg := g.Group("/lectures", jwt)
	lg.GET("/:id/contents", api.queryContents)
	lg.POST("/:id/contents", api.createContent, instructorMiddleware())
	lg.PUT("/:id", api.updateLecture, instructorMiddleware())
	lg.DELETE("/:id", api.destroyLecture, instructorMiddleware())

	g.PUT("/contents/:id", api.updateContent, jwt, instructorMiddleware())
	g.DELETE("/contents/:id", api.destroyContent, jwt, instructorMiddleware())
}

// checkCourseAccess ensures the caller owns the course or is an admin.
func (api *courseApi) checkCourseAccess(ctx echo.Context, crs course.Course) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
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

// checkModuleAccess walks up to the owning course.
func (api *courseApi) checkModuleAccess(ctx echo.Context, moduleID int) (course.Module, error) {
	mod, err := api.svc.GetModule(ctx.Request().Context(), moduleID)
	if err != nil {
		return course.Module{}, err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), mod.CourseID)
	if err != nil {
		return course.Module{}, err
	}
	return mod, api.checkCourseAccess(ctx, crs)
}

func (api *courseApi) checkLectureAccess(ctx echo.Context, lectureID int) (course.Lecture, error) {
	lec, err := api.svc.GetLecture(ctx.Request().Context(), lectureID)
	if err != nil {
		return course.Lecture{}, err
	}
	_, err = api.checkModuleAccess(ctx, lec.ModuleID)
	return lec, err
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Create(ctx.Request().Context(), data, uid)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "title", "difficulty", "language", "duration_minutes", "status", "created_at")

	courses, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkCourseAccess(ctx, crs); err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs, api.validate); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkCourseAccess(ctx, crs); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Modules

func (api *courseApi) createModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err := api.checkCourseAccess(ctx, crs); err != nil {
		return err
	}

	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	data.CourseID = id
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *courseApi) queryModules(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	mods, err := api.svc.QueryCourseModules(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if mods == nil {
		mods = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *courseApi) updateModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	mod, err := api.checkModuleAccess(ctx, id)
	if err != nil {
		return err
	}

	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	data.CourseID = mod.CourseID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod.Title = data.Title
	mod.Description = data.Description
	mod.OrderNumber = data.OrderNumber
	mod, err = api.svc.UpdateModule(ctx.Request().Context(), mod)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *courseApi) destroyModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.checkModuleAccess(ctx, id); err != nil {
		return err
	}
	if err := api.svc.DeleteModule(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lectures

func (api *courseApi) createLecture(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.checkModuleAccess(ctx, id); err != nil {
		return err
	}

	var data course.NewLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	data.ModuleID = id
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lec, err := api.svc.CreateLecture(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lecture")
	}
	return ctx.JSON(http.StatusCreated, lec)
}

func (api *courseApi) queryLectures(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lecs, err := api.svc.QueryModuleLectures(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if lecs == nil {
		lecs = []course.Lecture{}
	}
	return ctx.JSON(http.StatusOK, lecs)
}

func (api *courseApi) updateLecture(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lec, err := api.checkLectureAccess(ctx, id)
	if err != nil {
		return err
	}

	var data course.NewLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	data.ModuleID = lec.ModuleID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lec.Title = data.Title
	lec.Description = data.Description
	lec.DurationMinutes = data.DurationMinutes
	lec.OrderNumber = data.OrderNumber
	lec, err = api.svc.UpdateLecture(ctx.Request().Context(), lec)
	if err != nil {
		return errors.Wrap(err, "updating lecture")
	}
	return ctx.JSON(http.StatusOK, lec)
}

func (api *courseApi) destroyLecture(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.checkLectureAccess(ctx, id); err != nil {
		return err
	}
	if err := api.svc.DeleteLecture(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting lecture")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Contents

func (api *courseApi) createContent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.checkLectureAccess(ctx, id); err != nil {
		return err
	}

	var data course.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	data.LectureID = id
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt, err := api.svc.CreateContent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating content")
	}
	return ctx.JSON(http.StatusCreated, cnt)
}

func (api *courseApi) queryContents(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cnts, err := api.svc.QueryLectureContents(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if cnts == nil {
		cnts = []course.Content{}
	}
	return ctx.JSON(http.StatusOK, cnts)
}

func (api *courseApi) updateContent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cnt, err := api.svc.GetContent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if _, err := api.checkLectureAccess(ctx, cnt.LectureID); err != nil {
		return err
	}

	var data course.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	data.LectureID = cnt.LectureID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt.Title = data.Title
	cnt.Type = data.Type
	cnt.Data = data.Data
	cnt, err = api.svc.UpdateContent(ctx.Request().Context(), cnt)
	if err != nil {
		return errors.Wrap(err, "updating content")
	}
	return ctx.JSON(http.StatusOK, cnt)
}

func (api *courseApi) destroyContent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cnt, err := api.svc.GetContent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if _, err := api.checkLectureAccess(ctx, cnt.LectureID); err != nil {
		return err
	}
	if err := api.svc.DeleteContent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Reviews

func (api *courseApi) createReview(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data course.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	data.CourseID = id
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	uid, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	rev, err := api.svc.CreateReview(ctx.Request().Context(), data, uid)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *courseApi) queryReviews(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	revs, err := api.svc.QueryCourseReviews(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if revs == nil {
		revs = []course.Review{}
	}
	return ctx.JSON(http.StatusOK, revs)
}
