package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/scheduling"
	"github.com/spigell/recruiter/internal/utils"
)

const (
	// FallbackMeetingLink replaces the join URL when no meeting could be booked.
	FallbackMeetingLink = "https://zoom.us/j/your_meeting_id_here (failed to auto-schedule - please create manually!)"

	ReferenceZone = "Asia/Kolkata"
	DisplayZone   = "America/New_York"

	InterviewHour     = 19
	InterviewDuration = 60 * time.Minute
)

// NextInterviewSlot returns 19:00 on the calendar day after now, in ref.
func NextInterviewSlot(now time.Time, ref *time.Location) time.Time {
	tomorrow := now.In(ref).AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), InterviewHour, 0, 0, 0, ref)
}

// Proceed confirms a selected candidate and books the interview. Every step
// is best effort: the confirmation mail is sent while the meeting is booked,
// a failed booking falls back to FallbackMeetingLink and the interview mail
// is always attempted. Calling Proceed again repeats the whole sequence; a
// record that already reached StateInterviewScheduled keeps that state and a
// failed repeat is reported only through the outcome.
func (m *Machine) Proceed(ctx context.Context) (*ProceedOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerProceed); err != nil {
		return nil, err
	}

	candidate := m.candidate()
	start := NextInterviewSlot(m.now(), m.referenceZone)
	outcome := &ProceedOutcome{InterviewTime: start}

	m.log().Info("proceeding with application", zap.Time("interview_time", start))

	var g errgroup.Group
	g.Go(func() error {
		outcome.Confirmation = m.deps.Notifier.SendConfirmation(ctx, candidate)
		return nil
	})
	g.Go(func() error {
		outcome.MeetingLink, outcome.SchedulingErr = m.bookMeeting(ctx, candidate.RoleTitle, start)
		return nil
	})
	_ = g.Wait()

	if outcome.SchedulingErr != nil {
		m.log().Warn("interview not booked, using fallback link", zap.Error(outcome.SchedulingErr))
	}

	outcome.Interview = m.deps.Notifier.SendInterview(ctx, candidate, notify.Interview{
		Start:       start,
		DisplayZone: m.displayZone,
		Duration:    InterviewDuration,
		Link:        outcome.MeetingLink,
	})

	switch {
	case !outcome.PartialFailure():
		outcome.State = StateInterviewScheduled
	case m.rec.State == StateInterviewScheduled:
		outcome.State = StateInterviewScheduled
	default:
		outcome.State = StateInterviewSchedulingFailed
	}

	m.rec.State = outcome.State
	m.rec.InterviewTime = &start
	m.rec.MeetingLink = outcome.MeetingLink
	stored := *outcome
	m.rec.LastProceed = &stored
	m.touch()

	m.log().Info("proceed finished",
		zap.Bool("confirmation_sent", outcome.Confirmation.OK()),
		zap.Bool("interview_sent", outcome.Interview.OK()),
		zap.Bool("fallback_link", outcome.UsedFallback()),
	)

	return outcome, nil
}

// bookMeeting never fails the sequence: any problem yields the fallback link
// together with the reason.
func (m *Machine) bookMeeting(ctx context.Context, roleTitle string, start time.Time) (string, error) {
	token, err := m.deps.Scheduler.Credential(ctx)
	if err != nil {
		return FallbackMeetingLink, err
	}
	if utils.Blank(token) {
		return FallbackMeetingLink, fmt.Errorf("%w: no access token", scheduling.ErrUnavailable)
	}

	link, err := m.deps.Scheduler.CreateMeeting(ctx, token, scheduling.Meeting{
		Topic:    fmt.Sprintf("%s Technical Interview", roleTitle),
		Start:    start,
		Duration: InterviewDuration,
	})
	if err != nil {
		return FallbackMeetingLink, err
	}
	if utils.Blank(link) {
		return FallbackMeetingLink, fmt.Errorf("%w: no join url", scheduling.ErrUnavailable)
	}

	return link, nil
}
