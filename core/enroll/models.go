package enroll

import "time"

type Enrollment struct {
	ID              string          `json:"id"`
	StudentID       string          `json:"student_id"`
	CourseID        string          `json:"course_id"`
	EnrolledAt      time.Time       `json:"enrolled_at"` // UTC
	Progress        map[string]bool `json:"progress"`    // recording ID -> watched
	Attendance      []string        `json:"attendance"`  // class IDs attended
	AttendanceCount int             `json:"attendance_count"`
}

// Attended reports whether attendance was already marked for the given class session.
func (e Enrollment) Attended(classID string) bool {
	for _, id := range e.Attendance {
		if id == classID {
			return true
		}
	}
	return false
}
