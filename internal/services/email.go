package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/finnkap/org-management-api/internal/models"
	"github.com/resend/resend-go/v2"
)

// InvitationNotification carries everything the invitation email needs.
type InvitationNotification struct {
	To               string
	InviterName      string
	OrganizationName string
	Role             models.OrganizationRole
	InviteURL        string
}

// Notifier delivers invitation emails. The invitation engine takes it as an
// injected collaborator so tests can substitute a double.
type Notifier interface {
	SendInvitation(ctx context.Context, n InvitationNotification) error
}

// ResendNotifier sends invitation emails through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	domain string
}

// NewResendNotifier creates a ResendNotifier sending from the given domain.
func NewResendNotifier(apiKey, domain string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		domain: domain,
	}
}

// SendInvitation sends the invitation email and returns an error when the
// provider rejects or fails the dispatch.
func (s *ResendNotifier) SendInvitation(ctx context.Context, n InvitationNotification) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <noreply@%s>", n.OrganizationName, s.domain),
		To:      []string{n.To},
		Subject: fmt.Sprintf("You've been invited to join %s", n.OrganizationName),
		Html:    invitationEmailHTML(n),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

func invitationEmailHTML(n InvitationNotification) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(fmt.Sprintf(`<h1>%s</h1>`, n.OrganizationName))
	b.WriteString(`<h2>You've been invited!</h2>`)
	b.WriteString(fmt.Sprintf(`<p>%s has invited you to join %s as a %s.</p>`,
		n.InviterName, n.OrganizationName, strings.ToLower(string(n.Role))))
	b.WriteString(`<p>Click the link below to accept the invitation and create your account:</p>`)
	b.WriteString(fmt.Sprintf(`<p><a href="%s">Accept Invitation</a></p>`, n.InviteURL))
	b.WriteString(`<p>This invitation will expire in 7 days.</p>`)
	b.WriteString(`<p>If you don't want to join or believe this was sent in error, you can safely ignore this email.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}
