package course

import (
	"context"
	"time"

	"github.com/gurujilabs/guruji/core"
)

type Course struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	InstructorID   string           `json:"instructor_id"`
	Thumbnail      string           `json:"thumbnail,omitempty"`
	Price          float64          `json:"price"`
	IsPublished    bool             `json:"is_published"`
	IsCompleted    bool             `json:"is_completed"`
	AttendanceOpen bool             `json:"attendance_open"`
	CurrentClassID string           `json:"current_class_id,omitempty"`
	Classes        []ScheduledClass `json:"scheduled_classes"`
	CreatedAt      time.Time        `json:"created_at"` // UTC
	UpdatedAt      time.Time        `json:"updated_at"` // UTC
}

// ScheduledClass is a live class session attached to a Course,
// backed by a calendar event with a meet link.
type ScheduledClass struct {
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"starts_at"` // UTC
	DurationMins int       `json:"duration_minutes"`
	MeetLink     string    `json:"meet_link,omitempty"`
	CalendarLink string    `json:"calendar_link,omitempty"`
	IsCompleted  bool      `json:"is_completed"`
}

// Done reports whether the class counts as held: either the instructor
// marked it completed or its start time has passed.
func (sc ScheduledClass) Done(now time.Time) bool {
	return sc.IsCompleted || !sc.StartsAt.After(now)
}

// CompletedClassCount counts classes that have been held as of `now`.
func (c Course) CompletedClassCount(now time.Time) int {
	var n int
	for _, sc := range c.Classes {
		if sc.Done(now) {
			n++
		}
	}
	return n
}

type Recording struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	DriveFileID string    `json:"drive_file_id,omitempty"`
	DriveLink   string    `json:"drive_link,omitempty"`
	Duration    int       `json:"duration"` // seconds
	RecordedAt  time.Time `json:"recorded_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Note struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	DriveLink   string    `json:"drive_link"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Thumbnail   string  `json:"thumbnail" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"gte=0"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = orig.Description
	}
	return core.Validate.Struct(uc)
}

// NewScheduledClass contains information needed to schedule a live class.
type NewScheduledClass struct {
	Title        string    `json:"title" validate:"required"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	DurationMins int       `json:"duration_minutes" validate:"omitempty,gt=0"`
	NotifyAll    bool      `json:"notify_all"`
}

func (ns *NewScheduledClass) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	if ns.DurationMins == 0 {
		ns.DurationMins = 60
	}
	return core.Validate.Struct(ns)
}

// NewRecording contains information needed to attach a Recording to a Course.
type NewRecording struct {
	Title       string    `json:"title" validate:"required"`
	DriveFileID string    `json:"drive_file_id"`
	DriveLink   string    `json:"drive_link" validate:"omitempty,url"`
	Duration    int       `json:"duration" validate:"gte=0"`
	RecordedAt  time.Time `json:"recorded_at"`
}

func (nr *NewRecording) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	return core.Validate.Struct(nr)
}

// NewNote contains information needed to attach a Note to a Course.
type NewNote struct {
	Title       string `json:"title" validate:"required"`
	DriveLink   string `json:"drive_link" validate:"required,url"`
	Description string `json:"description"`
}

func (nn *NewNote) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Description = core.CleanString(nn.Description)
	return core.Validate.Struct(nn)
}

// Meeting is a scheduled calendar event with conferencing attached.
type Meeting struct {
	EventID      string
	MeetLink     string
	CalendarLink string
}

// MeetService is any service that can schedule video meetings.
type MeetService interface {
	Schedule(ctx context.Context, title string, startsAt time.Time, durationMins int, attendeeEmails []string) (Meeting, error)
	Cancel(ctx context.Context, eventID string) error
}
