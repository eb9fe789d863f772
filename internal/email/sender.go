package email

import (
	"context"
	"fmt"
)

// Sender is the interface that all email providers must implement.
// This abstraction allows swapping email providers (Resend, SendGrid, SES, Gmail)
// without changing the dispatch loop.
type Sender interface {
	// Send sends an email to the specified recipient and returns the
	// provider's message id when it reports one.
	Send(ctx context.Context, msg Message) (string, error)
}

// Message represents an email message to be sent.
type Message struct {
	To       string // recipient email address
	ToName   string // recipient display name, optional
	Subject  string // email subject
	HTMLBody string // HTML email body
	TextBody string // plain-text fallback body
}

// formatAddress renders "Name <addr>", or just addr when name is empty
func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}
