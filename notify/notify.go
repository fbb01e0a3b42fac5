package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// CertificateNotice describes a newly issued course certificate.
type CertificateNotice struct {
	Email             string
	Name              string
	CourseTitle       string
	CertificateNumber string
	IssuedAt          time.Time
}

// Notifier delivers learner notifications. Delivery is best-effort for callers.
type Notifier interface {
	CertificateIssued(ctx context.Context, n CertificateNotice) error
}

var ErrNoRecipient = errors.New("notice has no recipient email")

type Nop struct{}

func (Nop) CertificateIssued(context.Context, CertificateNotice) error { return nil }

const sendGridHost = "https://api.sendgrid.com"

// SendGrid sends notices through the SendGrid v3 mail API.
type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGrid(apiKey, fromEmail, fromName string) *SendGrid {
	return NewSendGridWithHost(apiKey, fromEmail, fromName, sendGridHost)
}

// NewSendGridWithHost points the client at another API host, e.g. a local mock.
func NewSendGridWithHost(apiKey, fromEmail, fromName, host string) *SendGrid {
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", strings.TrimRight(host, "/"))
	req.Method = "POST"
	return &SendGrid{
		client: &sendgrid.Client{Request: req},
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendGrid) CertificateIssued(ctx context.Context, n CertificateNotice) error {
	if strings.TrimSpace(n.Email) == "" {
		return ErrNoRecipient
	}
	subject, plain, html := certificateMessage(n)
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(n.Name, n.Email), plain, html)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func certificateMessage(n CertificateNotice) (subject, plain, html string) {
	name := n.Name
	if name == "" {
		name = "learner"
	}
	issued := n.IssuedAt.Format("January 2, 2006")
	subject = fmt.Sprintf("Your certificate for %s", n.CourseTitle)
	plain = fmt.Sprintf(
		"Congratulations %s!\n\nYou completed %s on %s.\nCertificate number: %s\n",
		name, n.CourseTitle, issued, n.CertificateNumber,
	)
	html = emailLayout("Certificate of Completion", fmt.Sprintf(
		`<p>Congratulations %s!</p><p>You completed <strong>%s</strong> on %s.</p><div class="info-box">Certificate number: <code>%s</code></div>`,
		template.HTMLEscapeString(name), template.HTMLEscapeString(n.CourseTitle), issued, template.HTMLEscapeString(n.CertificateNumber),
	))
	return subject, plain, html
}
