package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
)

var errCrsNotFoundInCtx = errors.New("course object not found in echo.Context")

const contextCourseKey = "course"

type courseApi struct {
	svc       *course.Service
	enrollSvc *enroll.Service
	userSvc   *user.Service
	conf      *core.Config
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *course.Service,
	enrollSvc *enroll.Service,
	userSvc *user.Service,
	conf *core.Config,
) {
	api := courseApi{svc: svc, enrollSvc: enrollSvc, userSvc: userSvc, conf: conf}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryPublished)
	cg.POST("", api.create, instructorMiddleware())
	cg.GET("/mine", api.queryMine, instructorMiddleware())

	dg := cg.Group("/:id", api.loadCourseMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, api.ownerMiddleware())
	dg.DELETE("", api.destroy, api.ownerMiddleware())
	dg.POST("/publish", api.publish, api.ownerMiddleware())
	dg.POST("/unpublish", api.unpublish, api.ownerMiddleware())
	dg.POST("/complete", api.complete, api.ownerMiddleware())

	dg.POST("/classes", api.scheduleClass, api.ownerMiddleware())
	dg.DELETE("/classes/:eventID", api.cancelClass, api.ownerMiddleware())
	dg.POST("/classes/:eventID/done", api.markClassDone, api.ownerMiddleware())

	dg.GET("/recordings", api.queryRecordings)
	dg.POST("/recordings", api.addRecording, api.ownerMiddleware())
	dg.DELETE("/recordings/:recID", api.destroyRecording, api.ownerMiddleware())

	dg.GET("/notes", api.queryNotes)
	dg.POST("/notes", api.addNote, api.ownerMiddleware())
	dg.DELETE("/notes/:noteID", api.destroyNote, api.ownerMiddleware())
}

// loadCourseMiddleware fetches the course once and stashes it in the context.
func (api *courseApi) loadCourseMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding course by ID")
			}
			ctx.Set(contextCourseKey, crs)
			return next(ctx)
		}
	}
}

// ownerMiddleware restricts an endpoint to the course's instructor or an admin.
func (api *courseApi) ownerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, ok := ctx.Get(contextCourseKey).(course.Course)
			if !ok {
				return errors.Wrap(errCrsNotFoundInCtx, "retrieving object from context")
			}
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || crs.InstructorID == claims.Subject {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func contextCourse(ctx echo.Context) (course.Course, error) {
	crs, ok := ctx.Get(contextCourseKey).(course.Course)
	if !ok {
		return course.Course{}, errors.Wrap(errCrsNotFoundInCtx, "retrieving object from context")
	}
	return crs, nil
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryPublished(ctx echo.Context) error {
	courses, err := api.svc.QueryPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	courses, err := api.svc.QueryByInstructor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if err := api.enrollSvc.DeleteByCourse(reqCtx, crs.ID); err != nil {
		return errors.Wrap(err, "deleting course enrollments")
	}
	if err := api.svc.Delete(reqCtx, crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) publish(ctx echo.Context) error {
	return api.setPublished(ctx, true)
}

func (api *courseApi) unpublish(ctx echo.Context) error {
	return api.setPublished(ctx, false)
}

func (api *courseApi) setPublished(ctx echo.Context, published bool) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	crs, err = api.svc.SetPublished(ctx.Request().Context(), crs, published)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) complete(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	crs, err = api.svc.SetCompleted(ctx.Request().Context(), crs, true)
	if err != nil {
		return errors.Wrap(err, "completing course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) scheduleClass(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewScheduledClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScheduledClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()

	// enrolled students get a calendar invite when requested
	var attendeeEmails []string
	if data.NotifyAll {
		enrollments, err := api.enrollSvc.QueryByCourse(reqCtx, crs.ID)
		if err != nil {
			return errors.Wrap(err, "querying course enrollments")
		}
		for _, enr := range enrollments {
			if usr, err := api.userSvc.GetByID(reqCtx, enr.StudentID); err == nil {
				attendeeEmails = append(attendeeEmails, usr.Email)
			}
		}
	}

	crs, err = api.svc.ScheduleClass(reqCtx, crs, data, attendeeEmails)
	if err != nil {
		return errors.Wrap(err, "scheduling class")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) cancelClass(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	crs, err = api.svc.CancelClass(ctx.Request().Context(), crs, ctx.Param("eventID"))
	if err != nil {
		if errors.Cause(err) == course.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "cancelling class")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) markClassDone(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	crs, err = api.svc.MarkClassDone(ctx.Request().Context(), crs, ctx.Param("eventID"))
	if err != nil {
		if errors.Cause(err) == course.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking class done")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) queryRecordings(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.requireEnrolledOrOwner(ctx, crs); err != nil {
		return err
	}

	recs, err := api.svc.QueryRecordings(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying recordings")
	}
	if recs == nil {
		recs = []course.Recording{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *courseApi) addRecording(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewRecording
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecording")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.AddRecording(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding recording")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *courseApi) destroyRecording(ctx echo.Context) error {
	if err := api.svc.DeleteRecording(ctx.Request().Context(), ctx.Param("recID")); err != nil {
		return errors.Wrap(err, "deleting recording")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryNotes(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.requireEnrolledOrOwner(ctx, crs); err != nil {
		return err
	}

	notes, err := api.svc.QueryNotes(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []course.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *courseApi) addNote(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	note, err := api.svc.AddNote(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding note")
	}
	return ctx.JSON(http.StatusCreated, note)
}

func (api *courseApi) destroyNote(ctx echo.Context) error {
	if err := api.svc.DeleteNote(ctx.Request().Context(), ctx.Param("noteID")); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// requireEnrolledOrOwner allows the course instructor, admins and enrolled students.
func (api *courseApi) requireEnrolledOrOwner(ctx echo.Context, crs course.Course) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || crs.InstructorID == claims.Subject {
		return nil
	}

	enrolled, err := api.enrollSvc.IsEnrolled(ctx.Request().Context(), claims.Subject, crs.ID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return errHttpForbidden
	}
	return nil
}
