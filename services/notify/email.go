package notify

import (
	"context"
	"fmt"

	"coursehub/utils"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "CourseHub"

// EmailNotifier mails students through SendGrid. Only manually finalized
// submissions are mailed; auto-graded ones are shown to the student at once.
type EmailNotifier struct {
	from *mail.Email
	send func(ctx context.Context, msg *mail.SGMailV3) (*rest.Response, error)
}

func NewEmailNotifier(apiKey, sender string) *EmailNotifier {
	client := sendgrid.NewSendClient(apiKey)
	return &EmailNotifier{
		from: mail.NewEmail(senderName, sender),
		send: client.SendWithContext,
	}
}

func (n *EmailNotifier) deliver(ctx context.Context, name, address, subject, htmlBody string) error {
	if address == "" {
		return nil
	}
	msg := mail.NewSingleEmail(n.from, subject, mail.NewEmail(name, address), "", htmlBody)
	resp, err := n.send(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (n *EmailNotifier) SubmissionGraded(ctx context.Context, ev SubmissionGraded) error {
	if !ev.Manual {
		return nil
	}
	subject, body := utils.SubmissionGradedEmail(ev.UserName, ev.QuizTitle, ev.Score, ev.Passed)
	return n.deliver(ctx, ev.UserName, ev.UserEmail, subject, body)
}

func (n *EmailNotifier) CertificateIssued(ctx context.Context, ev CertificateIssued) error {
	subject, body := utils.CertificateEmail(ev.UserName, ev.CourseTitle, ev.CertificateNumber)
	return n.deliver(ctx, ev.UserName, ev.UserEmail, subject, body)
}
