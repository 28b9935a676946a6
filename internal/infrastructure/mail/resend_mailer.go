package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"comoresmarket/internal/domain/service"
	"comoresmarket/internal/infrastructure/metrics"
	"comoresmarket/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateNewMessage       = "new_message"
	templateVerificationCode = "verification_code"
	templatePasswordReset    = "password_reset"
)

// Sender delivers one rendered email. The resend client satisfies it in
// production.
type Sender interface {
	Send(ctx context.Context, req *resend.SendEmailRequest) error
}

type resendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) Sender {
	return &resendSender{client: resend.NewClient(apiKey)}
}

func (s *resendSender) Send(ctx context.Context, req *resend.SendEmailRequest) error {
	_, err := s.client.Emails.SendWithContext(ctx, req)
	return err
}

// logSender only logs. It is used when no API key is configured.
type logSender struct{}

func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(_ context.Context, req *resend.SendEmailRequest) error {
	logger.Info("Mail delivery disabled, dropping %q to %v", req.Subject, req.To)
	return nil
}

type Mailer struct {
	sender    Sender
	from      string
	baseURL   string
	templates map[string]*template.Template
	metrics   *metrics.Metrics
}

func NewMailer(sender Sender, from, baseURL string, m *metrics.Metrics) (*Mailer, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{templateNewMessage, templateVerificationCode, templatePasswordReset} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Mailer{
		sender:    sender,
		from:      from,
		baseURL:   baseURL,
		templates: templates,
		metrics:   m,
	}, nil
}

var _ service.MailService = (*Mailer)(nil)

type templateData struct {
	Subject string
	BaseURL string
	Data    interface{}
}

func (m *Mailer) render(name, subject string, data interface{}) (string, error) {
	var buf bytes.Buffer
	err := m.templates[name].ExecuteTemplate(&buf, "layout", templateData{
		Subject: subject,
		BaseURL: m.baseURL,
		Data:    data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) send(ctx context.Context, name, to, subject string, data interface{}) error {
	html, err := m.render(name, subject, data)
	if err != nil {
		return err
	}

	err = m.sender.Send(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})

	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	if m.metrics != nil {
		m.metrics.EmailsSent.WithLabelValues(name, outcome).Inc()
	}
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", name, err)
	}
	return nil
}

func (m *Mailer) SendNewMessage(ctx context.Context, mail service.NewMessageMail) error {
	subject := fmt.Sprintf("Nouveau message de %s", mail.SenderName)
	return m.send(ctx, templateNewMessage, mail.To, subject, mail)
}

func (m *Mailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	return m.send(ctx, templateVerificationCode, to, "Votre code de vérification Comores Market", struct {
		Name string
		Code string
	}{name, code})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	return m.send(ctx, templatePasswordReset, to, "Réinitialisation de votre mot de passe", struct {
		Name     string
		ResetURL string
	}{name, resetURL})
}
