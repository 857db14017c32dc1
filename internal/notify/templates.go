package notify

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Candidate addresses a mail to one applicant for one role.
type Candidate struct {
	Email     string
	RoleTitle string
}

// Interview describes a booked or pending interview slot.
type Interview struct {
	// Start is expressed in the reference zone of the schedule.
	Start       time.Time
	DisplayZone *time.Location
	Duration    time.Duration
	Link        string
}

type confirmationData struct {
	RoleTitle string
	Company   string
}

type rejectionData struct {
	RoleTitle string
	Company   string
	Feedback  string
}

type interviewData struct {
	RoleTitle       string
	Company         string
	Date            string
	ReferenceTime   string
	DisplayTime     string
	ReferenceZone   string
	ReferenceOffset string
	DisplayZone     string
	DisplayOffset   string
	DurationMinutes int
	Attendee        string
	Link            string
}

func confirmationSubject(c Candidate, company string) string {
	return fmt.Sprintf("Selection Confirmation - %s at %s", c.RoleTitle, company)
}

func interviewSubject(c Candidate, company string) string {
	return fmt.Sprintf("Interview Scheduled - %s at %s", c.RoleTitle, company)
}

func rejectionSubject(c Candidate, company string) string {
	return fmt.Sprintf("Your Application for %s at %s", c.RoleTitle, company)
}

func newInterviewData(c Candidate, company string, i Interview) interviewData {
	display := i.DisplayZone
	if display == nil {
		display = time.UTC
	}
	shown := i.Start.In(display)

	return interviewData{
		RoleTitle:       c.RoleTitle,
		Company:         company,
		Date:            i.Start.Format(time.DateOnly),
		ReferenceTime:   i.Start.Format("2006-01-02 15:04 MST"),
		DisplayTime:     shown.Format("2006-01-02 15:04 MST"),
		ReferenceZone:   i.Start.Format("MST"),
		ReferenceOffset: i.Start.Format("-07:00"),
		DisplayZone:     shown.Format("MST"),
		DisplayOffset:   shown.Format("-07:00"),
		DurationMinutes: int(i.Duration / time.Minute),
		Attendee:        c.Email,
		Link:            i.Link,
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
