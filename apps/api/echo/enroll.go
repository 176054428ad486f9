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

type enrollApi struct {
	svc       *enroll.Service
	courseSvc *course.Service
	userSvc   *user.Service
	conf      *core.Config
}

func registerEnrollAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *enroll.Service,
	courseSvc *course.Service,
	userSvc *user.Service,
	conf *core.Config,
) {
	api := enrollApi{svc: svc, courseSvc: courseSvc, userSvc: userSvc, conf: conf}

	eg := g.Group("/enrollments", jwt)
	eg.GET("/mine", api.queryMine)
	eg.GET("/attendance", api.myAttendance)

	cg := g.Group("/courses/:id", jwt, api.loadCourseMiddleware())
	cg.POST("/enroll", api.enroll)
	cg.DELETE("/enroll", api.withdraw)
	cg.GET("/roster", api.roster, api.ownerMiddleware())
	cg.POST("/progress", api.updateProgress)
	cg.POST("/attendance/toggle", api.toggleAttendance, api.ownerMiddleware())
	cg.GET("/attendance", api.attendanceStatus)
	cg.POST("/attendance", api.markAttendance)
}

func (api *enrollApi) loadCourseMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := api.courseSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
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

func (api *enrollApi) ownerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := contextCourse(ctx)
			if err != nil {
				return err
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

// Handlers

func (api *enrollApi) enroll(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if !crs.IsPublished {
		return errHttpNotFound
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), claims.Subject, crs.ID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollApi) withdraw(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Withdraw(ctx.Request().Context(), claims.Subject, crs.ID); err != nil {
		return errors.Wrap(err, "withdrawing")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enrs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enroll.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollApi) roster(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	enrs, err := api.svc.QueryByCourse(reqCtx, crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}

	entries := make([]RosterEntry, 0, len(enrs))
	for _, enr := range enrs {
		entry := RosterEntry{Enrollment: enr}
		if usr, err := api.userSvc.GetByID(reqCtx, enr.StudentID); err == nil {
			entry.StudentName = usr.Name
			entry.StudentEmail = usr.Email
		}
		entries = append(entries, entry)
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *enrollApi) updateProgress(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data ProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.UpdateProgress(ctx.Request().Context(), claims.Subject, crs.ID, data.RecordingID, data.Watched)
	if err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollApi) toggleAttendance(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if crs.AttendanceOpen {
		crs, err = api.courseSvc.CloseAttendance(reqCtx, crs)
	} else {
		crs, err = api.courseSvc.OpenAttendance(reqCtx, crs)
	}
	if err != nil {
		return errors.Wrap(err, "toggling attendance")
	}
	return ctx.JSON(http.StatusOK, AttendanceStatusResponse{
		Open:    crs.AttendanceOpen,
		ClassID: crs.CurrentClassID,
	})
}

func (api *enrollApi) attendanceStatus(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	status := AttendanceStatusResponse{Open: crs.AttendanceOpen, ClassID: crs.CurrentClassID}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if enr, err := api.svc.Get(ctx.Request().Context(), claims.Subject, crs.ID); err == nil {
		status.Marked = crs.CurrentClassID != "" && enr.Attended(crs.CurrentClassID)
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *enrollApi) markAttendance(ctx echo.Context) error {
	crs, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if !crs.AttendanceOpen || crs.CurrentClassID == "" {
		return echo.NewHTTPError(http.StatusConflict, "attendance is not open")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.MarkAttendance(ctx.Request().Context(), claims.Subject, crs.ID, crs.CurrentClassID)
	if err != nil {
		switch errors.Cause(err) {
		case enroll.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrAlreadyMarked:
			return ctx.JSON(http.StatusOK, MarkAttendanceResponse{Marked: false, AttendanceCount: enr.AttendanceCount})
		}
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, MarkAttendanceResponse{Marked: true, AttendanceCount: enr.AttendanceCount})
}

func (api *enrollApi) myAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enrs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}

	summaries := make([]AttendanceSummary, 0, len(enrs))
	for _, enr := range enrs {
		summaries = append(summaries, AttendanceSummary{
			CourseID:        enr.CourseID,
			Attendance:      enr.Attendance,
			AttendanceCount: enr.AttendanceCount,
		})
	}
	return ctx.JSON(http.StatusOK, summaries)
}

type (
	ProgressRequest struct {
		RecordingID string `json:"recording_id" validate:"required"`
		Watched     bool   `json:"watched"`
	}

	RosterEntry struct {
		enroll.Enrollment
		StudentName  string `json:"student_name,omitempty"`
		StudentEmail string `json:"student_email,omitempty"`
	}

	AttendanceStatusResponse struct {
		Open    bool   `json:"open"`
		ClassID string `json:"class_id,omitempty"`
		Marked  bool   `json:"marked"`
	}

	MarkAttendanceResponse struct {
		Marked          bool `json:"marked"`
		AttendanceCount int  `json:"attendance_count"`
	}

	AttendanceSummary struct {
		CourseID        string   `json:"course_id"`
		Attendance      []string `json:"attendance"`
		AttendanceCount int      `json:"attendance_count"`
	}
)

func (pr *ProgressRequest) Validate() error {
	pr.RecordingID = core.CleanString(pr.RecordingID)
	return core.Validate.Struct(pr)
}
