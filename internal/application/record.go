package application

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/screening"
)

// Record is the state of one candidate application.
type Record struct {
	ID             uuid.UUID  `json:"id"`
	CandidateEmail string     `json:"candidate_email,omitempty"`
	Role           roles.Role `json:"role"`
	ResumeText     string     `json:"-"`
	State          State      `json:"state"`
	Feedback       string     `json:"feedback,omitempty"`
	InterviewTime  *time.Time `json:"interview_time,omitempty"`
	MeetingLink    string     `json:"meeting_link,omitempty"`

	Screening   *ScreeningAttempt `json:"screening,omitempty"`
	Rejection   *notify.Delivery  `json:"rejection,omitempty"`
	LastProceed *ProceedOutcome   `json:"last_proceed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasResume reports whether extracted text is attached.
func (r Record) HasResume() bool { return r.ResumeText != "" }

func (r Record) clone() Record {
	out := r
	if r.InterviewTime != nil {
		t := *r.InterviewTime
		out.InterviewTime = &t
	}
	if r.Screening != nil {
		s := *r.Screening
		if s.Decision != nil {
			d := *s.Decision
			s.Decision = &d
		}
		out.Screening = &s
	}
	if r.Rejection != nil {
		d := *r.Rejection
		out.Rejection = &d
	}
	if r.LastProceed != nil {
		p := *r.LastProceed
		out.LastProceed = &p
	}
	return out
}

type AttemptOutcome string

const (
	AttemptSelected       AttemptOutcome = "selected"
	AttemptRejected       AttemptOutcome = "rejected"
	AttemptTransportError AttemptOutcome = "transport_error"
	AttemptFormatError    AttemptOutcome = "format_error"
	AttemptError          AttemptOutcome = "error"
)

// ScreeningAttempt records the last call to the screener. A failed attempt
// keeps the application in StateScreening.
type ScreeningAttempt struct {
	At       time.Time           `json:"at"`
	Outcome  AttemptOutcome      `json:"outcome"`
	Error    string              `json:"error,omitempty"`
	Decision *screening.Decision `json:"decision,omitempty"`
}

// Failed reports whether no answer could be obtained or parsed.
func (a ScreeningAttempt) Failed() bool {
	return a.Outcome != AttemptSelected && a.Outcome != AttemptRejected
}

func classifyScreeningError(err error) AttemptOutcome {
	switch {
	case errors.Is(err, screening.ErrFormat):
		return AttemptFormatError
	case errors.Is(err, screening.ErrTransport):
		return AttemptTransportError
	default:
		return AttemptError
	}
}

// ProceedOutcome is the result of one proceed sequence.
type ProceedOutcome struct {
	InterviewTime time.Time       `json:"interview_time"`
	MeetingLink   string          `json:"meeting_link"`
	SchedulingErr error           `json:"-"`
	Confirmation  notify.Delivery `json:"confirmation"`
	Interview     notify.Delivery `json:"interview"`
	State         State           `json:"state"`
}

// PartialFailure reports whether at least one of the two mails was not sent.
func (o ProceedOutcome) PartialFailure() bool {
	return !o.Confirmation.OK() || !o.Interview.OK()
}

// UsedFallback reports whether the meeting could not be booked automatically.
func (o ProceedOutcome) UsedFallback() bool {
	return o.MeetingLink == FallbackMeetingLink
}
