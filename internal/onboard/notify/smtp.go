package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/tutorden/platform/pkg/idx"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Template]string{
	TemplateInvitation: "You're invited to Tutorden",
}

// SMTPConfig holds relay settings for the SMTP dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPDispatcher renders the embedded HTML templates and delivers them
// over a plain-auth SMTP relay.
type SMTPDispatcher struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

func NewSMTP(cfg SMTPConfig) (*SMTPDispatcher, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("notify: failed to parse templates: %w", err)
	}
	return &SMTPDispatcher{cfg: cfg, tmpl: tmpl}, nil
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	subject, ok := subjects[msg.Template]
	if !ok {
		return "", fmt.Errorf("notify: unknown template %q", msg.Template)
	}

	body, err := d.render(msg)
	if err != nil {
		return "", err
	}

	msgID := idx.New().String()
	payload := fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nMessage-ID: <%s@tutorden>\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		msg.Recipient, d.cfg.From, subject, msgID, body,
	)

	auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	if err := smtp.SendMail(addr, auth, d.cfg.From, []string{msg.Recipient}, []byte(payload)); err != nil {
		return "", fmt.Errorf("notify: smtp delivery failed: %w", err)
	}
	return msgID, nil
}

func (d *SMTPDispatcher) render(msg Message) (string, error) {
	vars := make(map[string]string, len(msg.Variables))
	for k, v := range msg.Variables {
		vars[k] = v
	}

	var buf bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&buf, string(msg.Template)+".html", vars); err != nil {
		return "", fmt.Errorf("notify: failed to render %q: %w", msg.Template, err)
	}
	return buf.String(), nil
}
