// Package notification provides the portal's best-effort email hooks with
// template rendering. Delivery failures never propagate past Notify: the
// business transition has already been committed when an email goes out, so
// a failure only degrades to a warning for the caller to display.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Kind identifies which hook fired.
type Kind string

const (
	KindConfirmation       Kind = "confirmation"
	KindRejection          Kind = "rejection"
	KindCancellation       Kind = "cancellation"
	KindReminder           Kind = "reminder"
	KindValidationApproved Kind = "validation-approved"
	KindValidationRejected Kind = "validation-rejected"
)

// templateFor maps a hook kind to its template id.
var templateFor = map[Kind]string{
	KindConfirmation:       "rdv-confirmation",
	KindRejection:          "rdv-refus",
	KindCancellation:       "rdv-annulation",
	KindReminder:           "rdv-rappel",
	KindValidationApproved: "inscription-approuvee",
	KindValidationRejected: "inscription-refusee",
}

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "rdv-confirmation",
			Name:    "Confirmation de rendez-vous",
			Subject: "Votre appel vidéo avec {{resident}} est confirmé",
			Body:    "Bonjour {{famille}},<br>votre appel vidéo avec {{resident}} est confirmé le {{date}} à {{heure}}.<br>Lien d'accès : <a href=\"{{lien}}\">{{lien}}</a>",
		},
		{
			ID:      "rdv-refus",
			Name:    "Refus de rendez-vous",
			Subject: "Votre demande d'appel vidéo n'a pas pu être retenue",
			Body:    "Bonjour {{famille}},<br>votre demande d'appel vidéo avec {{resident}} le {{date}} à {{heure}} n'a pas pu être retenue. N'hésitez pas à proposer un autre créneau.",
		},
		{
			ID:      "rdv-annulation",
			Name:    "Annulation de rendez-vous",
			Subject: "Appel vidéo du {{date}} annulé",
			Body:    "Bonjour {{famille}},<br>l'appel vidéo avec {{resident}} prévu le {{date}} à {{heure}} a été annulé.",
		},
		{
			ID:      "rdv-rappel",
			Name:    "Rappel de rendez-vous",
			Subject: "Rappel : appel vidéo avec {{resident}} le {{date}}",
			Body:    "Bonjour {{famille}},<br>nous vous rappelons votre appel vidéo avec {{resident}} le {{date}} à {{heure}}.<br>Lien d'accès : <a href=\"{{lien}}\">{{lien}}</a>",
		},
		{
			ID:      "inscription-approuvee",
			Name:    "Inscription approuvée",
			Subject: "Votre accès au portail familles est activé",
			Body:    "Bonjour {{famille}},<br>votre inscription au portail familles a été approuvée. Vous pouvez maintenant demander des appels vidéo avec {{resident}}.",
		},
		{
			ID:      "inscription-refusee",
			Name:    "Inscription refusée",
			Subject: "Votre demande d'accès au portail familles",
			Body:    "Bonjour {{famille}},<br>votre demande d'accès au portail familles n'a pas pu être validée. Contactez l'établissement pour plus d'informations.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// SMTPConfig holds connection settings for the SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// SMTPSender sends HTML mail through a plain SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendEmail implements EmailSender over net/smtp.
func (s *SMTPSender) SendEmail(_ context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		return errors.New("smtp host not configured")
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Notifier fires the portal's email hooks.
type Notifier struct {
	sender    EmailSender
	templates *TemplateEngine
	log       zerolog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(sender EmailSender, templates *TemplateEngine, log zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, templates: templates, log: log}
}

// Notify renders the template for kind and sends it to the recipient. The
// returned boolean reports whether the mail went out so callers can surface
// an "email not sent" warning; failures are logged, never returned.
func (n *Notifier) Notify(ctx context.Context, kind Kind, to string, data map[string]string) bool {
	if to == "" {
		n.log.Warn().Str("kind", string(kind)).Msg("notification skipped: no recipient")
		return false
	}

	templateID, ok := templateFor[kind]
	if !ok {
		n.log.Error().Str("kind", string(kind)).Msg("notification skipped: unknown kind")
		return false
	}

	subject, body, err := n.templates.Render(templateID, data)
	if err != nil {
		n.log.Error().Err(err).Str("kind", string(kind)).Msg("notification template render failed")
		return false
	}

	if err := n.sender.SendEmail(ctx, to, subject, body); err != nil {
		n.log.Warn().Err(err).Str("kind", string(kind)).Str("to", to).Msg("notification delivery failed")
		return false
	}

	n.log.Info().Str("kind", string(kind)).Str("to", to).Msg("notification sent")
	return true
}
