package certificate

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var filenameSafeRegex = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Certificate records the completion of a course by a student.
// All display fields are denormalized at issue time so the certificate
// renders the same even if the user or course is later renamed.
type Certificate struct {
	ID                   string    `json:"id"`
	StudentID            string    `json:"student_id"`
	CourseID             string    `json:"course_id"`
	Code                 string    `json:"certificate_code"`
	StudentName          string    `json:"student_name"`
	CourseTitle          string    `json:"course_title"`
	InstructorName       string    `json:"instructor_name"`
	AttendanceCount      int       `json:"attendance_count"`
	TotalClasses         int       `json:"total_classes"`
	AttendancePercentage float64   `json:"attendance_percentage"`
	IssuedAt             time.Time `json:"issued_at"` // UTC
	IsValid              bool      `json:"is_valid"`
}

// AttachmentFilename derives the download filename from the student name
// and a truncated course title, e.g. Certificate_Asha_Gurung_Intro_to_Algebra.pdf
func (c Certificate) AttachmentFilename() string {
	name := sanitizeFilenamePart(c.StudentName)
	course := sanitizeFilenamePart(c.CourseTitle)
	if len(course) > 30 {
		course = course[:30]
	}
	return fmt.Sprintf("Certificate_%s_%s.pdf", name, course)
}

func sanitizeFilenamePart(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	return filenameSafeRegex.ReplaceAllString(s, "")
}

// NewCertificate contains the denormalized information needed to issue a Certificate.
type NewCertificate struct {
	StudentID       string `json:"student_id" validate:"required"`
	CourseID        string `json:"course_id" validate:"required"`
	StudentName     string `json:"student_name" validate:"required"`
	CourseTitle     string `json:"course_title" validate:"required"`
	InstructorName  string `json:"instructor_name" validate:"required"`
	AttendanceCount int    `json:"attendance_count" validate:"gte=0"`
	TotalClasses    int    `json:"total_classes" validate:"gt=0"`
}

func (nc *NewCertificate) Validate() error {
	nc.StudentName = core.CleanString(nc.StudentName)
	nc.CourseTitle = core.CleanString(nc.CourseTitle)
	nc.InstructorName = core.CleanString(nc.InstructorName)
	return core.Validate.Struct(nc)
}

// Verification is the public payload returned when a certificate code is checked.
type Verification struct {
	Valid bool `json:"valid"`
	Certificate
}

// generateCode returns a random verification code formatted as XXXX-XXXX-XXXX.
func generateCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 12; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "reading random bytes")
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	code := sb.String()
	return fmt.Sprintf("%s-%s-%s", code[:4], code[4:8], code[8:12]), nil
}
