package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

// ErrNotConfigured is returned when no SMTP host is set
var ErrNotConfigured = errors.New("email: smtp is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	AppName      string
	LoginURL     string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	tmpl   *template.Template
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config: config,
		send:   smtp.SendMail,
		tmpl:   template.Must(template.New("temporary_password").Parse(temporaryPasswordTemplate)),
	}
}

// Enabled reports whether the service can deliver mail
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// SendTemporaryPassword emails a newly registered user their first password
func (s *EmailService) SendTemporaryPassword(toEmail, name, password string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	htmlContent, err := s.renderTemporaryPassword(toEmail, name, password)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your %s account", s.config.AppName)
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, htmlContent))
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

func (s *EmailService) renderTemporaryPassword(email, name, password string) (string, error) {
	data := struct {
		Name     string
		Email    string
		Password string
		AppName  string
		LoginURL string
	}{
		Name:     name,
		Email:    email,
		Password: password,
		AppName:  s.config.AppName,
		LoginURL: s.config.LoginURL,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const temporaryPasswordTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.AppName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 32px 30px;">
                <h2 style="color: #1a1a2e; margin: 0 0 20px 0;">Welcome to {{.AppName}}, {{.Name}}</h2>
                <p style="color: #4a5568; font-size: 16px; line-height: 1.6;">
                    An account has been created for <strong>{{.Email}}</strong>. Use the temporary password below to sign in.
                </p>
                <p style="font-size: 20px; font-family: monospace; background: #edf2f7; padding: 12px; border-radius: 6px; text-align: center;">{{.Password}}</p>
                <p style="color: #4a5568; font-size: 14px;">Please change it after your first login.</p>
                {{if .LoginURL}}<p><a href="{{.LoginURL}}" style="color: #667eea;">Sign in</a></p>{{end}}
            </td>
        </tr>
    </table>
</body>
</html>
`
