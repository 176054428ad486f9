package meetsvc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/gurujilabs/guruji/core"
	"github.com/gurujilabs/guruji/core/course"
)

// TokenFunc supplies a valid OAuth2 access token for the calendar owner.
type TokenFunc func(ctx context.Context) (string, error)

type (
	eventDateTime struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	}

	conferenceSolutionKey struct {
		Type string `json:"type"`
	}

	conferenceCreateRequest struct {
		RequestID             string                `json:"requestId"`
		ConferenceSolutionKey conferenceSolutionKey `json:"conferenceSolutionKey"`
	}

	conferenceData struct {
		CreateRequest *conferenceCreateRequest `json:"createRequest,omitempty"`
		EntryPoints   []entryPoint             `json:"entryPoints,omitempty"`
	}

	entryPoint struct {
		URI string `json:"uri"`
	}

	attendee struct {
		Email string `json:"email"`
	}

	calendarEvent struct {
		ID             string          `json:"id,omitempty"`
		Summary        string          `json:"summary"`
		Start          eventDateTime   `json:"start"`
		End            eventDateTime   `json:"end"`
		Attendees      []attendee      `json:"attendees,omitempty"`
		ConferenceData *conferenceData `json:"conferenceData,omitempty"`
		HTMLLink       string          `json:"htmlLink,omitempty"`
	}

	apiError struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

type googleMeetService struct {
	client     *resty.Client
	calendarID string
	timeZone   string
	token      TokenFunc
}

var _ course.MeetService = (*googleMeetService)(nil)

func NewGoogleMeetService(conf *core.Config, token TokenFunc) course.MeetService {
	client := resty.New().
		SetBaseURL(conf.Google.CalendarBaseURL).
		SetTimeout(30 * time.Second)
	return &googleMeetService{
		client:     client,
		calendarID: conf.Google.CalendarID,
		timeZone:   conf.Google.TimeZone,
		token:      token,
	}
}

func (svc *googleMeetService) Schedule(ctx context.Context, title string, startsAt time.Time, durationMins int, attendeeEmails []string) (course.Meeting, error) {
	tok, err := svc.token(ctx)
	if err != nil {
		return course.Meeting{}, errors.Wrap(err, "getting access token")
	}

	event := calendarEvent{
		Summary: title,
		Start:   svc.dateTime(startsAt),
		End:     svc.dateTime(startsAt.Add(time.Duration(durationMins) * time.Minute)),
		ConferenceData: &conferenceData{
			CreateRequest: &conferenceCreateRequest{
				RequestID:             fmt.Sprintf("guruji-%d", time.Now().UnixNano()),
				ConferenceSolutionKey: conferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	sendUpdates := "none"
	if len(attendeeEmails) > 0 {
		sendUpdates = "all"
		for _, email := range attendeeEmails {
			event.Attendees = append(event.Attendees, attendee{Email: email})
		}
	}

	var (
		created calendarEvent
		apiErr  apiError
	)
	res, err := svc.client.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetQueryParam("conferenceDataVersion", "1").
		SetQueryParam("sendUpdates", sendUpdates).
		SetBody(event).
		SetResult(&created).
		SetError(&apiErr).
		Post(fmt.Sprintf("/calendars/%s/events", svc.calendarID))
	if err != nil {
		return course.Meeting{}, errors.Wrap(err, "creating calendar event")
	}
	if res.IsError() {
		return course.Meeting{}, errors.Errorf("creating calendar event: %s (%d)", apiErr.Error.Message, res.StatusCode())
	}

	meeting := course.Meeting{
		EventID:      created.ID,
		CalendarLink: created.HTMLLink,
	}
	if cd := created.ConferenceData; cd != nil && len(cd.EntryPoints) > 0 {
		meeting.MeetLink = cd.EntryPoints[0].URI
	}
	return meeting, nil
}

func (svc *googleMeetService) Cancel(ctx context.Context, eventID string) error {
	tok, err := svc.token(ctx)
	if err != nil {
		return errors.Wrap(err, "getting access token")
	}

	var apiErr apiError
	res, err := svc.client.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetError(&apiErr).
		Delete(fmt.Sprintf("/calendars/%s/events/%s", svc.calendarID, eventID))
	if err != nil {
		return errors.Wrap(err, "deleting calendar event")
	}
	// the event may already be gone; treat that the same as a successful delete
	if res.IsError() && res.StatusCode() != http.StatusNotFound && res.StatusCode() != http.StatusGone {
		return errors.Errorf("deleting calendar event: %s (%d)", apiErr.Error.Message, res.StatusCode())
	}
	return nil
}

func (svc *googleMeetService) dateTime(t time.Time) eventDateTime {
	return eventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: svc.timeZone}
}
