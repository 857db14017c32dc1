package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	contentType = "application/json"

	scheduledMeeting = 2
	localTimeLayout  = "2006-01-02T15:04:05"
)

// Meeting describes a scheduled meeting. Start carries the zone the meeting
// is booked in.
type Meeting struct {
	Topic    string
	Start    time.Time
	Duration time.Duration
}

type meetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Agenda    string          `json:"agenda"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

type meetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

// CreateMeeting books a scheduled meeting for the token's user and returns
// its join URL.
func (z *Zoom) CreateMeeting(ctx context.Context, token string, m Meeting) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", unavailable("create meeting", errors.New("access token is empty"))
	}

	payload, err := json.Marshal(newMeetingRequest(m))
	if err != nil {
		return "", unavailable("encode meeting", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.apiURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return "", unavailable("build request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Content-Type", contentType)

	resp, err := z.request(req)
	if err != nil {
		return "", unavailable("create meeting", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("read response", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", unavailable("create meeting", fmt.Errorf("bad status: %s", resp.Status))
	}

	var meeting meetingResponse
	if err := json.Unmarshal(data, &meeting); err != nil {
		return "", unavailable("decode meeting", err)
	}
	if strings.TrimSpace(meeting.JoinURL) == "" {
		return "", unavailable("create meeting", errors.New("response has no join_url"))
	}

	z.logger.Debug("zoom meeting created", zap.Int64("meeting_id", meeting.ID))

	return meeting.JoinURL, nil
}

func (z *Zoom) request(req *http.Request) (*http.Response, error) {
	z.logger.Debug("make request", zap.String("url", req.URL.String()))
	return z.HTTPClient.Do(req)
}

func newMeetingRequest(m Meeting) meetingRequest {
	loc := m.Start.Location()

	return meetingRequest{
		Topic:     m.Topic,
		Type:      scheduledMeeting,
		StartTime: m.Start.Format(localTimeLayout),
		Duration:  int(m.Duration / time.Minute),
		Timezone:  loc.String(),
		Agenda:    m.Topic,
		Settings: meetingSettings{
			JoinBeforeHost: true,
			WaitingRoom:    false,
		},
	}
}
