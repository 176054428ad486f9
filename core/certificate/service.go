package certificate

import (
	"bytes"
	"context"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
)

var (
	// errors
	ErrNotFound = errors.New("certificate not found")
)

type (
	Repository interface {
		CreateCertificate(ctx context.Context, cert Certificate) (Certificate, error)
		GetCertificateByCode(ctx context.Context, code string) (Certificate, error)
		GetCertificateForStudentAndCourse(ctx context.Context, studentID, courseID string) (Certificate, error)
		QueryCertificatesByStudent(ctx context.Context, studentID string) ([]Certificate, error)
		InvalidateCertificate(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		renderer *Renderer
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

func NewService(repo Repository, renderer *Renderer, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, renderer: renderer, mailSvc: mailSvc, conf: conf}
}

// Issue creates a certificate for a student/course pair. Issuing twice for the
// same pair returns the existing certificate.
func (svc *Service) Issue(ctx context.Context, nc NewCertificate) (Certificate, error) {
	if existing, err := svc.repo.GetCertificateForStudentAndCourse(ctx, nc.StudentID, nc.CourseID); err == nil {
		return existing, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Certificate{}, err
	}

	code, err := svc.uniqueCode(ctx)
	if err != nil {
		return Certificate{}, err
	}

	pct := math.Round(float64(nc.AttendanceCount)/float64(nc.TotalClasses)*1000) / 10
	cert := Certificate{
		ID:                   uuid.New().String(),
		StudentID:            nc.StudentID,
		CourseID:             nc.CourseID,
		Code:                 code,
		StudentName:          nc.StudentName,
		CourseTitle:          nc.CourseTitle,
		InstructorName:       nc.InstructorName,
		AttendanceCount:      nc.AttendanceCount,
		TotalClasses:         nc.TotalClasses,
		AttendancePercentage: pct,
		IssuedAt:             time.Now().UTC(),
		IsValid:              true,
	}
	return svc.repo.CreateCertificate(ctx, cert)
}

// uniqueCode generates verification codes until one is free.
func (svc *Service) uniqueCode(ctx context.Context) (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, err := svc.repo.GetCertificateByCode(ctx, code); err != nil {
			if errors.Cause(err) == ErrNotFound {
				return code, nil
			}
			return "", err
		}
	}
}

// GetByCode looks a certificate up by its verification code. Codes are stored
// upper-case so the lookup is case-insensitive.
func (svc *Service) GetByCode(ctx context.Context, code string) (Certificate, error) {
	return svc.repo.GetCertificateByCode(ctx, strings.ToUpper(core.CleanString(code)))
}

func (svc *Service) GetForStudentAndCourse(ctx context.Context, studentID, courseID string) (Certificate, error) {
	return svc.repo.GetCertificateForStudentAndCourse(ctx, studentID, courseID)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Certificate, error) {
	return svc.repo.QueryCertificatesByStudent(ctx, studentID)
}

// Verify reports whether a certificate code belongs to a valid certificate.
func (svc *Service) Verify(ctx context.Context, code string) (Verification, error) {
	cert, err := svc.GetByCode(ctx, code)
	if err != nil {
		return Verification{}, err
	}
	return Verification{Valid: cert.IsValid, Certificate: cert}, nil
}

func (svc *Service) Invalidate(ctx context.Context, id string) error {
	return svc.repo.InvalidateCertificate(ctx, id)
}

// RenderPNG renders the certificate as an encoded PNG.
func (svc *Service) RenderPNG(cert Certificate, templateName ...string) (*bytes.Buffer, error) {
	return svc.renderer.RenderImage(cert, templateName...)
}

// RenderPDF renders the certificate as a single-page PDF.
func (svc *Service) RenderPDF(cert Certificate, templateName ...string) (*bytes.Buffer, error) {
	return svc.renderer.RenderPDF(cert, templateName...)
}

// Email renders the certificate PDF and mails it to the given address.
func (svc *Service) Email(cert Certificate, to mail.Address) error {
	pdfBuf, err := svc.renderer.RenderPDF(cert)
	if err != nil {
		return errors.Wrap(err, "rendering certificate pdf")
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{to},
		Subject: "Your certificate for " + cert.CourseTitle,
		BodyStr: "Congratulations " + cert.StudentName + "!\n\n" +
			"Your certificate of completion for \"" + cert.CourseTitle + "\" is attached.\n" +
			"It can be verified at any time with the code " + cert.Code + ".",
	}
	if err := msg.Attach(bytes.NewReader(pdfBuf.Bytes()), cert.AttachmentFilename(), "application/pdf"); err != nil {
		return errors.Wrap(err, "attaching certificate pdf")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}
