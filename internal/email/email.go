package email

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier sends human-handoff notifications via SendGrid when a
// conversation escalates and the assignment asked to be notified.
type Notifier struct {
	apiKey      string
	notifyEmail string
	siteURL     string
}

// NewNotifier creates a new escalation notifier
func NewNotifier(apiKey, notifyEmail, siteURL string) *Notifier {
	return &Notifier{
		apiKey:      apiKey,
		notifyEmail: notifyEmail,
		siteURL:     siteURL,
	}
}

// Enabled reports whether notifications can actually be sent.
func (n *Notifier) Enabled() bool {
	return n.apiKey != "" && n.notifyEmail != ""
}

// SendEscalation notifies the operations inbox that a conversation needs
// a human. Failures are the caller's to log; escalation itself already
// succeeded by the time this runs.
func (n *Notifier) SendEscalation(contactName, contactPhone, conversationID string) error {
	if !n.Enabled() {
		return fmt.Errorf("escalation notifications not configured")
	}

	from := mail.NewEmail("WA Console", "noreply@waconsole.app")
	to := mail.NewEmail("Operations", n.notifyEmail)

	subject := fmt.Sprintf("Conversation escalated: %s", contactName)

	body := fmt.Sprintf(`A conversation was escalated and needs a human.

Contact: %s (%s)
Escalated at: %s

Open it: %s/chat?conversation=%s`,
		contactName, contactPhone,
		time.Now().UTC().Format(time.RFC3339),
		n.siteURL, conversationID)

	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send escalation email: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}
