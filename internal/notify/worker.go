package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/hibiken/asynq"
	"gopkg.in/gomail.v2"

	"meetapi/internal/config"
)

// EmailSender delivers a rendered email. Split from the queue handler so
// tests can swap delivery out.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// smtpSender sends mail through the configured SMTP relay using gomail.
type smtpSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender creates an EmailSender backed by SMTP.
func NewSMTPSender(cfg config.SMTPConfig) EmailSender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SenderMail, s.cfg.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Welcome, {{.UserName}}!</h2>
<p>Your account is ready. You can now schedule meetings and attach documents to them.</p>
<p><a href="{{.AppURL}}">Open the app</a></p>
`))

var meetingCreatedTmpl = template.Must(template.New("meeting_created").Parse(`
<h2>Meeting scheduled</h2>
<p>Hi {{.UserName}}, your meeting <strong>{{.Title}}</strong> was created.</p>
<ul>
  <li>Starts: {{.StartDate.Format "02 Jan 2006 15:04 MST"}}</li>
  <li>Ends: {{.EndDate.Format "02 Jan 2006 15:04 MST"}}</li>
</ul>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p><a href="{{.AppURL}}/meetings/{{.MeetingID}}">View meeting</a></p>
`))

// Handler consumes email tasks from the queue and delivers them via an
// EmailSender. Registered on an asynq.ServeMux in cmd/worker.
type Handler struct {
	sender EmailSender
	appURL string
}

// NewHandler creates a queue handler delivering through sender; appURL is
// embedded into email links.
func NewHandler(sender EmailSender, appURL string) *Handler {
	return &Handler{sender: sender, appURL: appURL}
}

// Register attaches the handler's task types to mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeWelcomeEmail, h.handleWelcome)
	mux.HandleFunc(TypeMeetingCreatedEmail, h.handleMeetingCreated)
}

func (h *Handler) handleWelcome(ctx context.Context, t *asynq.Task) error {
	var p WelcomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode welcome payload: %w", err)
	}

	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, struct {
		WelcomePayload
		AppURL string
	}{p, h.appURL}); err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	if err := h.sender.Send(p.ToEmail, "Welcome to MeetAPI!", body.String()); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}

func (h *Handler) handleMeetingCreated(ctx context.Context, t *asynq.Task) error {
	var p MeetingCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode meeting created payload: %w", err)
	}

	var body bytes.Buffer
	if err := meetingCreatedTmpl.Execute(&body, struct {
		MeetingCreatedPayload
		AppURL string
	}{p, h.appURL}); err != nil {
		return fmt.Errorf("render meeting created email: %w", err)
	}

	subject := fmt.Sprintf("Meeting scheduled: %s (%s)", p.Title, p.StartDate.Format(time.RFC1123))
	if err := h.sender.Send(p.ToEmail, subject, body.String()); err != nil {
		return fmt.Errorf("send meeting created email: %w", err)
	}
	return nil
}
