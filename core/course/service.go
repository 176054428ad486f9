package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound          = errors.New("course not found")
	ErrClassNotFound     = errors.New("scheduled class not found")
	ErrRecordingNotFound = errors.New("recording not found")
	ErrNoteNotFound      = errors.New("note not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryPublishedCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByInstructor(ctx context.Context, instructorID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		CreateRecording(ctx context.Context, rec Recording) (Recording, error)
		GetRecordingByID(ctx context.Context, id string) (Recording, error)
		QueryRecordingsByCourse(ctx context.Context, courseID string) ([]Recording, error)
		DeleteRecording(ctx context.Context, id string) error

		CreateNote(ctx context.Context, note Note) (Note, error)
		GetNoteByID(ctx context.Context, id string) (Note, error)
		QueryNotesByCourse(ctx context.Context, courseID string) ([]Note, error)
		DeleteNote(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		meetSvc MeetService
	}
)

func NewService(repo Repository, meetSvc MeetService) *Service {
	return &Service{repo: repo, meetSvc: meetSvc}
}

func (svc *Service) Create(ctx context.Context, instructorID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		ID:           uuid.New().String(),
		Title:        nc.Title,
		Description:  nc.Description,
		InstructorID: instructorID,
		Thumbnail:    nc.Thumbnail,
		Price:        nc.Price,
		Classes:      []ScheduledClass{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryPublished(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryPublishedCourses(ctx)
}

func (svc *Service) QueryByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return svc.repo.QueryCoursesByInstructor(ctx, instructorID)
}

func (svc *Service) Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	orig.Title = uc.Title
	orig.Description = uc.Description
	if uc.Thumbnail != "" {
		orig.Thumbnail = uc.Thumbnail
	}
	if uc.Price != nil {
		orig.Price = *uc.Price
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, orig)
}

func (svc *Service) SetPublished(ctx context.Context, crs Course, published bool) (Course, error) {
	crs.IsPublished = published
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) SetCompleted(ctx context.Context, crs Course, completed bool) (Course, error) {
	crs.IsCompleted = completed
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// ScheduleClass creates a meet event and records the class on the course.
func (svc *Service) ScheduleClass(ctx context.Context, crs Course, ns NewScheduledClass, attendeeEmails []string) (Course, error) {
	meeting, err := svc.meetSvc.Schedule(ctx, ns.Title, ns.StartsAt, ns.DurationMins, attendeeEmails)
	if err != nil {
		return Course{}, errors.Wrap(err, "scheduling meeting")
	}

	crs.Classes = append(crs.Classes, ScheduledClass{
		EventID:      meeting.EventID,
		Title:        ns.Title,
		StartsAt:     ns.StartsAt.UTC(),
		DurationMins: ns.DurationMins,
		MeetLink:     meeting.MeetLink,
		CalendarLink: meeting.CalendarLink,
	})
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// CancelClass cancels the meet event and removes the class from the course.
func (svc *Service) CancelClass(ctx context.Context, crs Course, eventID string) (Course, error) {
	idx := -1
	for i, sc := range crs.Classes {
		if sc.EventID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Course{}, ErrClassNotFound
	}

	if err := svc.meetSvc.Cancel(ctx, eventID); err != nil {
		return Course{}, errors.Wrap(err, "cancelling meeting")
	}

	crs.Classes = append(crs.Classes[:idx], crs.Classes[idx+1:]...)
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// MarkClassDone flags a scheduled class as held.
func (svc *Service) MarkClassDone(ctx context.Context, crs Course, eventID string) (Course, error) {
	var found bool
	for i, sc := range crs.Classes {
		if sc.EventID == eventID {
			crs.Classes[i].IsCompleted = true
			found = true
			break
		}
	}
	if !found {
		return Course{}, ErrClassNotFound
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// OpenAttendance starts an attendance session on the course and stamps a new class id.
func (svc *Service) OpenAttendance(ctx context.Context, crs Course) (Course, error) {
	crs.AttendanceOpen = true
	crs.CurrentClassID = "class_" + time.Now().UTC().Format("20060102_150405")
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// CloseAttendance stops the running attendance session.
func (svc *Service) CloseAttendance(ctx context.Context, crs Course) (Course, error) {
	crs.AttendanceOpen = false
	crs.CurrentClassID = ""
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) AddRecording(ctx context.Context, courseID string, nr NewRecording) (Recording, error) {
	now := time.Now().UTC()
	rec := Recording{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Title:       nr.Title,
		DriveFileID: nr.DriveFileID,
		DriveLink:   nr.DriveLink,
		Duration:    nr.Duration,
		RecordedAt:  nr.RecordedAt,
		CreatedAt:   now,
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = now
	}
	return svc.repo.CreateRecording(ctx, rec)
}

func (svc *Service) QueryRecordings(ctx context.Context, courseID string) ([]Recording, error) {
	return svc.repo.QueryRecordingsByCourse(ctx, courseID)
}

func (svc *Service) DeleteRecording(ctx context.Context, id string) error {
	return svc.repo.DeleteRecording(ctx, id)
}

func (svc *Service) AddNote(ctx context.Context, courseID string, nn NewNote) (Note, error) {
	note := Note{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Title:       nn.Title,
		DriveLink:   nn.DriveLink,
		Description: nn.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateNote(ctx, note)
}

func (svc *Service) QueryNotes(ctx context.Context, courseID string) ([]Note, error) {
	return svc.repo.QueryNotesByCourse(ctx, courseID)
}

func (svc *Service) DeleteNote(ctx context.Context, id string) error {
	return svc.repo.DeleteNote(ctx, id)
}
