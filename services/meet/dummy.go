package meetsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gurujilabs/guruji/core/course"
)

// DummyMeetService fabricates meetings locally. Used in development and tests.
type DummyMeetService struct {
	mu        sync.Mutex
	seq       int
	Cancelled []string
}

var _ course.MeetService = (*DummyMeetService)(nil)

func NewDummyMeetService() *DummyMeetService {
	return &DummyMeetService{}
}

func (svc *DummyMeetService) Schedule(ctx context.Context, title string, startsAt time.Time, durationMins int, attendeeEmails []string) (course.Meeting, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.seq++
	id := fmt.Sprintf("evt-%d", svc.seq)
	return course.Meeting{
		EventID:      id,
		MeetLink:     "https://meet.google.com/" + id,
		CalendarLink: "https://calendar.google.com/event?eid=" + id,
	}, nil
}

func (svc *DummyMeetService) Cancel(ctx context.Context, eventID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.Cancelled = append(svc.Cancelled, eventID)
	return nil
}
