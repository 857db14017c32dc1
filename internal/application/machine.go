// Package application drives a single candidate application from résumé
// upload through screening to interview booking.
package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/config"
	"github.com/spigell/recruiter/internal/logger"
	"github.com/spigell/recruiter/internal/notify"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/scheduling"
	"github.com/spigell/recruiter/internal/screening"
	"github.com/spigell/recruiter/internal/utils"
)

var validate = validator.New()

type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type Screener interface {
	Screen(ctx context.Context, resumeText string, role roles.Role, company string) (*screening.Decision, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, c notify.Candidate) notify.Delivery
	SendInterview(ctx context.Context, c notify.Candidate, i notify.Interview) notify.Delivery
	SendRejection(ctx context.Context, c notify.Candidate, feedback string) notify.Delivery
}

type Scheduler interface {
	Credential(ctx context.Context) (string, error)
	CreateMeeting(ctx context.Context, token string, m scheduling.Meeting) (string, error)
}

// Settings are the long-lived values kept across resets.
type Settings struct {
	Company string
	Role    roles.Role
}

// Deps are the collaborators a Machine calls into.
type Deps struct {
	Extractor Extractor
	Screener  Screener
	Notifier  Notifier
	Scheduler Scheduler
	Logger    *zap.Logger
}

type Option func(*Machine)

// WithClock replaces the wall clock used for timestamps and the interview slot.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// Machine owns one application record. All operations are serialized.
type Machine struct {
	mu sync.Mutex

	settings Settings
	deps     Deps
	logger   *zap.Logger
	now      func() time.Time

	referenceZone *time.Location
	displayZone   *time.Location

	rec Record
}

// New validates settings and collaborators and returns a machine in
// StateEmpty. Missing items are reported together in a config.IncompleteError.
func New(settings Settings, deps Deps, opts ...Option) (*Machine, error) {
	settings.Company = strings.TrimSpace(settings.Company)

	var missing []string
	if settings.Company == "" {
		missing = append(missing, "Company Name")
	}
	if settings.Role == "" {
		missing = append(missing, "Role")
	}
	if deps.Extractor == nil {
		missing = append(missing, "Text Extractor")
	}
	if deps.Screener == nil {
		missing = append(missing, "Screening Client")
	}
	if deps.Notifier == nil {
		missing = append(missing, "Notification Service")
	}
	if deps.Scheduler == nil {
		missing = append(missing, "Scheduling Service")
	}
	if len(missing) > 0 {
		return nil, &config.IncompleteError{Missing: missing}
	}

	role, err := roles.Parse(settings.Role.String())
	if err != nil {
		return nil, err
	}
	settings.Role = role

	referenceZone, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("load reference zone: %w", err)
	}
	displayZone, err := time.LoadLocation(DisplayZone)
	if err != nil {
		return nil, fmt.Errorf("load display zone: %w", err)
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	m := &Machine{
		settings:      settings,
		deps:          deps,
		logger:        log,
		now:           time.Now,
		referenceZone: referenceZone,
		displayZone:   displayZone,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rec = m.freshRecord()

	return m, nil
}

// Record returns a copy of the current application.
func (m *Machine) Record() Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rec.clone()
}

func (m *Machine) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settings
}

// SelectRole changes the role of a fresh application.
func (m *Machine) SelectRole(role roles.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerSelectRole); err != nil {
		return err
	}

	parsed, err := roles.Parse(role.String())
	if err != nil {
		return err
	}

	m.settings.Role = parsed
	m.rec.Role = parsed
	m.touch()
	m.log().Info("role selected")

	return nil
}

// SubmitResume extracts text from document and attaches it. Extraction
// errors are returned unchanged and leave the record as it was.
func (m *Machine) SubmitResume(ctx context.Context, document []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerUploadResume); err != nil {
		return err
	}

	text, err := m.deps.Extractor.Extract(ctx, document)
	if err != nil {
		m.log().Warn("resume extraction failed", zap.Error(err))
		return err
	}

	return m.uploadResume(text)
}

// UploadResume attaches already extracted text. A résumé may be replaced
// until screening starts.
func (m *Machine) UploadResume(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerUploadResume); err != nil {
		return err
	}

	return m.uploadResume(text)
}

func (m *Machine) uploadResume(text string) error {
	if utils.Blank(text) {
		return &InputError{Field: "resume", Reason: "has no text"}
	}

	m.rec.ResumeText = text
	m.rec.State = StateResumeUploaded
	m.touch()
	m.log().Info("resume uploaded", zap.Int("resume_length", len(text)))

	return nil
}

// RequestScreening starts a screening attempt for email and applies its
// decision. When the screener fails the application stays in StateScreening,
// the attempt is recorded and the error is returned; a new attempt may be
// requested with the same email.
func (m *Machine) RequestScreening(ctx context.Context, email string) (*screening.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerRequestScreening); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if m.rec.State == StateScreening {
		if email == "" {
			email = m.rec.CandidateEmail
		}
		if email != m.rec.CandidateEmail {
			return nil, &InputError{Field: "email", Reason: "cannot change once screening started"}
		}
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, &InputError{Field: "email", Reason: "must be a valid address"}
	}
	if utils.Blank(m.rec.ResumeText) {
		return nil, &InputError{Field: "resume", Reason: "has no text"}
	}

	m.rec.CandidateEmail = email
	m.rec.State = StateScreening
	m.touch()
	m.log().Info("screening started")

	decision, err := m.deps.Screener.Screen(ctx, m.rec.ResumeText, m.rec.Role, m.settings.Company)
	if err != nil {
		kind := classifyScreeningError(err)
		m.rec.Screening = &ScreeningAttempt{At: m.now(), Outcome: kind, Error: err.Error()}
		m.touch()
		m.log().Warn("screening failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	outcome := AttemptRejected
	if decision.Selected {
		outcome = AttemptSelected
	}
	m.rec.Screening = &ScreeningAttempt{At: m.now(), Outcome: outcome, Decision: decision}
	m.completeScreening(ctx, decision.Selected, decision.Feedback)

	return decision, nil
}

// CompleteScreening applies a screening decision to an application that is
// being screened. A rejection triggers exactly one best-effort rejection mail.
func (m *Machine) CompleteScreening(ctx context.Context, selected bool, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(triggerScreeningResult); err != nil {
		return err
	}

	m.completeScreening(ctx, selected, feedback)
	return nil
}

func (m *Machine) completeScreening(ctx context.Context, selected bool, feedback string) {
	if selected {
		m.rec.State = StateSelected
	} else {
		m.rec.State = StateRejected
	}
	m.rec.Feedback = feedback
	m.touch()
	m.log().Info("screening completed", zap.Bool("selected", selected))

	if selected {
		return
	}

	delivery := m.deps.Notifier.SendRejection(ctx, m.candidate(), feedback)
	m.rec.Rejection = &delivery
	if !delivery.OK() {
		m.log().Warn("rejection mail not delivered", zap.Error(delivery.Err))
	}
}

// Reset discards the application and starts a new one with a fresh ID.
// Settings and collaborators are kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.rec.ID
	m.rec = m.freshRecord()
	m.log().Info("application reset", zap.String("previous_application_id", previous.String()))
}

func (m *Machine) freshRecord() Record {
	now := m.now()
	return Record{
		ID:        uuid.New(),
		Role:      m.settings.Role,
		State:     StateEmpty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *Machine) guard(t trigger) error {
	if canFire(t, m.rec.State) {
		return nil
	}
	return &TransitionError{Trigger: string(t), From: m.rec.State}
}

func (m *Machine) candidate() notify.Candidate {
	return notify.Candidate{Email: m.rec.CandidateEmail, RoleTitle: roles.Title(m.rec.Role)}
}

func (m *Machine) touch() {
	m.rec.UpdatedAt = m.now()
}

func (m *Machine) log() *zap.Logger {
	return logger.WithFields(m.logger, logger.ApplicationFields(m.rec.ID.String(), m.rec.State.String(), m.rec.Role.String())...)
}
