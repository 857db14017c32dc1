package server

import (
	"time"

	"github.com/spigell/recruiter/internal/application"
	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/roles"
)

type deliveryView struct {
	Status  notify.Status `json:"status"`
	To      string        `json:"to"`
	Subject string        `json:"subject"`
	At      time.Time     `json:"at"`
	Error   string        `json:"error,omitempty"`
}

func newDeliveryView(d notify.Delivery) deliveryView {
	return deliveryView{Status: d.Status, To: d.To, Subject: d.Subject, At: d.At, Error: d.ErrorText()}
}

type outcomeView struct {
	State           string       `json:"state"`
	InterviewTime   time.Time    `json:"interview_time"`
	MeetingLink     string       `json:"meeting_link"`
	FallbackUsed    bool         `json:"fallback_used"`
	SchedulingError string       `json:"scheduling_error,omitempty"`
	PartialFailure  bool         `json:"partial_failure"`
	Confirmation    deliveryView `json:"confirmation"`
	Interview       deliveryView `json:"interview"`
}

func newOutcomeView(o application.ProceedOutcome) outcomeView {
	v := outcomeView{
		State:          o.State.String(),
		InterviewTime:  o.InterviewTime,
		MeetingLink:    o.MeetingLink,
		FallbackUsed:   o.UsedFallback(),
		PartialFailure: o.PartialFailure(),
		Confirmation:   newDeliveryView(o.Confirmation),
		Interview:      newDeliveryView(o.Interview),
	}
	if o.SchedulingErr != nil {
		v.SchedulingError = o.SchedulingErr.Error()
	}
	return v
}

type recordView struct {
	ID             string                        `json:"id"`
	State          string                        `json:"state"`
	Terminal       bool                          `json:"terminal"`
	Role           string                        `json:"role"`
	RoleTitle      string                        `json:"role_title"`
	CandidateEmail string                        `json:"candidate_email,omitempty"`
	HasResume      bool                          `json:"has_resume"`
	Feedback       string                        `json:"feedback,omitempty"`
	InterviewTime  *time.Time                    `json:"interview_time,omitempty"`
	MeetingLink    string                        `json:"meeting_link,omitempty"`
	Screening      *application.ScreeningAttempt `json:"screening,omitempty"`
	Rejection      *deliveryView                 `json:"rejection,omitempty"`
	LastProceed    *outcomeView                  `json:"last_proceed,omitempty"`
}

func newRecordView(r application.Record) recordView {
	v := recordView{
		ID:             r.ID.String(),
		State:          r.State.String(),
		Terminal:       r.State.Terminal(),
		Role:           r.Role.String(),
		RoleTitle:      roles.Title(r.Role),
		CandidateEmail: r.CandidateEmail,
		HasResume:      r.HasResume(),
		Feedback:       r.Feedback,
		InterviewTime:  r.InterviewTime,
		MeetingLink:    r.MeetingLink,
		Screening:      r.Screening,
	}
	if r.Rejection != nil {
		d := newDeliveryView(*r.Rejection)
		v.Rejection = &d
	}
	if r.LastProceed != nil {
		o := newOutcomeView(*r.LastProceed)
		v.LastProceed = &o
	}
	return v
}
