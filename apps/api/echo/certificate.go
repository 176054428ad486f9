package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/certificate"
	"github.com/gurujilabs/guruji/core/course"
	"github.com/gurujilabs/guruji/core/enroll"
	"github.com/gurujilabs/guruji/core/user"
)

type certificateApi struct {
	svc       *certificate.Service
	courseSvc *course.Service
	enrollSvc *enroll.Service
	userSvc   *user.Service
	conf      *core.Config
}

func registerCertificateAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *certificate.Service,
	courseSvc *course.Service,
	enrollSvc *enroll.Service,
	userSvc *user.Service,
	conf *core.Config,
) {
	api := certificateApi{svc: svc, courseSvc: courseSvc, enrollSvc: enrollSvc, userSvc: userSvc, conf: conf}

	cg := g.Group("/certificates")

	// public endpoints: anyone holding a code can verify or fetch the rendered
	// certificate without an account
	cg.GET("/verify/:code", api.verify)
	cg.GET("/:code/image", api.image)
	cg.GET("/:code/download", api.download)

	ag := cg.Group("", jwt)
	ag.POST("/generate", api.generate)
	ag.GET("/mine", api.queryMine)
	ag.GET("/course/:id", api.getByCourse)
}

// codeParam validates the :code path param format before any lookup.
func codeParam(ctx echo.Context) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(ctx.Param("code")))
	if !core.CertCodeRegex.MatchString(code) {
		return "", errInvalidCertCode
	}
	return code, nil
}

// Handlers

func (api *certificateApi) generate(ctx echo.Context) error {
	var data GenerateCertificateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateCertificateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.courseSvc.GetByID(reqCtx, data.CourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	if !crs.IsCompleted {
		return core.NewValidationError(errors.New("course is not completed yet"))
	}
	totalClasses := crs.CompletedClassCount(time.Now().UTC())
	if totalClasses == 0 {
		return core.NewValidationError(errors.New("course has no completed classes"))
	}

	enr, err := api.enrollSvc.Get(reqCtx, claims.Subject, crs.ID)
	if err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			return core.NewValidationError(errors.New("not enrolled in this course"))
		}
		return errors.Wrap(err, "getting enrollment")
	}

	student, err := getContextUser(ctx, api.userSvc, claims)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var instructorName string
	if instructor, err := api.userSvc.GetByID(reqCtx, crs.InstructorID); err == nil {
		instructorName = instructor.Name
	}

	attendanceCount := enr.AttendanceCount
	if attendanceCount > totalClasses {
		attendanceCount = totalClasses
	}

	nc := certificate.NewCertificate{
		StudentID:       student.ID,
		CourseID:        crs.ID,
		StudentName:     student.Name,
		CourseTitle:     crs.Title,
		InstructorName:  instructorName,
		AttendanceCount: attendanceCount,
		TotalClasses:    totalClasses,
	}
	if err := nc.Validate(); err != nil {
		return err
	}

	cert, err := api.svc.Issue(reqCtx, nc)
	if err != nil {
		return errors.Wrap(err, "issuing certificate")
	}
	return ctx.JSON(http.StatusCreated, cert)
}

func (api *certificateApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	certs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying certificates")
	}
	if certs == nil {
		certs = []certificate.Certificate{}
	}
	return ctx.JSON(http.StatusOK, certs)
}

func (api *certificateApi) getByCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cert, err := api.svc.GetForStudentAndCourse(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == certificate.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting certificate")
	}
	return ctx.JSON(http.StatusOK, cert)
}

func (api *certificateApi) verify(ctx echo.Context) error {
	code, err := codeParam(ctx)
	if err != nil {
		return err
	}

	verification, err := api.svc.Verify(ctx.Request().Context(), code)
	if err != nil {
		if errors.Cause(err) == certificate.ErrNotFound {
			return ctx.JSON(http.StatusOK, certificate.Verification{Valid: false})
		}
		return errors.Wrap(err, "verifying certificate")
	}
	return ctx.JSON(http.StatusOK, verification)
}

func (api *certificateApi) image(ctx echo.Context) error {
	cert, err := api.getRenderable(ctx)
	if err != nil {
		return err
	}

	buf, err := api.svc.RenderPNG(cert)
	if err != nil {
		return errors.Wrap(err, "rendering certificate png")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, "inline")
	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (api *certificateApi) download(ctx echo.Context) error {
	cert, err := api.getRenderable(ctx)
	if err != nil {
		return err
	}

	buf, err := api.svc.RenderPDF(cert)
	if err != nil {
		return errors.Wrap(err, "rendering certificate pdf")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+cert.AttachmentFilename()+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (api *certificateApi) getRenderable(ctx echo.Context) (certificate.Certificate, error) {
	code, err := codeParam(ctx)
	if err != nil {
		return certificate.Certificate{}, err
	}

	cert, err := api.svc.GetByCode(ctx.Request().Context(), code)
	if err != nil {
		if errors.Cause(err) == certificate.ErrNotFound {
			return certificate.Certificate{}, errHttpNotFound
		}
		return certificate.Certificate{}, errors.Wrap(err, "getting certificate")
	}
	if !cert.IsValid {
		return certificate.Certificate{}, errHttpNotFound
	}
	return cert, nil
}

type GenerateCertificateRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

func (gr *GenerateCertificateRequest) Validate() error {
	gr.CourseID = core.CleanString(gr.CourseID)
	return core.Validate.Struct(gr)
}
