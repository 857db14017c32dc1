package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/scheduling"
	"github.com/spigell/recruiter/internal/screening"
)

const backendResume = "Senior engineer. Python, REST APIs, Docker, AWS."

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

type stubCompleter struct {
	responses []string
	err       error
	calls     int
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no response configured")
	}
	r := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return r, nil
}

func (s *stubCompleter) Model() string { return "stub-model" }

type sentMail struct {
	kind      string
	candidate notify.Candidate
	feedback  string
	interview notify.Interview
}

type stubNotifier struct {
	mu               sync.Mutex
	mails            []sentMail
	failConfirmation bool
	failInterview    bool
	failRejection    bool
}

func (s *stubNotifier) record(mail sentMail, fail bool) notify.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mails = append(s.mails, mail)
	if fail {
		return notify.Delivery{Status: notify.StatusDeliveryFailed, To: mail.candidate.Email, Err: errors.New("smtp down")}
	}
	return notify.Delivery{Status: notify.StatusSent, To: mail.candidate.Email}
}

func (s *stubNotifier) SendConfirmation(_ context.Context, c notify.Candidate) notify.Delivery {
	return s.record(sentMail{kind: "confirmation", candidate: c}, s.failConfirmation)
}

func (s *stubNotifier) SendInterview(_ context.Context, c notify.Candidate, i notify.Interview) notify.Delivery {
	return s.record(sentMail{kind: "interview", candidate: c, interview: i}, s.failInterview)
}

func (s *stubNotifier) SendRejection(_ context.Context, c notify.Candidate, feedback string) notify.Delivery {
	return s.record(sentMail{kind: "rejection", candidate: c, feedback: feedback}, s.failRejection)
}

func (s *stubNotifier) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.mails))
	for _, m := range s.mails {
		out = append(out, m.kind)
	}
	return out
}

func (s *stubNotifier) last(kind string) (sentMail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.mails) - 1; i >= 0; i-- {
		if s.mails[i].kind == kind {
			return s.mails[i], true
		}
	}
	return sentMail{}, false
}

type stubScheduler struct {
	mu        sync.Mutex
	token     string
	credErr   error
	link      string
	meetErr   error
	credCalls int
	meetings  []scheduling.Meeting
}

func (s *stubScheduler) Credential(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credCalls++
	return s.token, s.credErr
}

func (s *stubScheduler) CreateMeeting(_ context.Context, _ string, m scheduling.Meeting) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meetings = append(s.meetings, m)
	return s.link, s.meetErr
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
}

type fixture struct {
	machine   *Machine
	completer *stubCompleter
	extractor *stubExtractor
	notifier  *stubNotifier
	scheduler *stubScheduler
}

func newFixture(t *testing.T, responses ...string) *fixture {
	t.Helper()

	f := &fixture{
		completer: &stubCompleter{responses: responses},
		extractor: &stubExtractor{text: backendResume},
		notifier:  &stubNotifier{},
		scheduler: &stubScheduler{token: "tok", link: "https://zoom.us/j/123"},
	}

	m, err := New(
		Settings{Company: "Acme", Role: roles.BackendEngineer},
		Deps{
			Extractor: f.extractor,
			Screener:  screening.New(f.completer, zap.NewNop(), 0),
			Notifier:  f.notifier,
			Scheduler: f.scheduler,
		},
		WithClock(fixedClock),
	)
	require.NoError(t, err)
	f.machine = m

	return f
}

// selected drives the fixture to StateSelected.
func (f *fixture) selected(t *testing.T) {
	t.Helper()

	require.NoError(t, f.machine.UploadResume(backendResume))
	f.completer.responses = []string{`{"selected": true, "feedback": "Strong match"}`}
	_, err := f.machine.RequestScreening(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, StateSelected, f.machine.Record().State)
}
