package sender

import (
	"fmt"

	"clubsched/internal/config"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers invite emails with a calendar attachment through the
// Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(cfg config.Resend) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.FromAddress,
	}
}

func (m *ResendMailer) SendInvite(to, subject, text string, ics []byte) error {
	const op = "sender.SendInvite"

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		Attachments: []*resend.Attachment{
			{
				Filename:    "invite.ics",
				Content:     ics,
				ContentType: "text/calendar",
			},
		},
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
