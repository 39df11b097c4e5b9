package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// ConfirmationEmailData holds data for the conference creation confirmation.
type ConfirmationEmailData struct {
	Email          string
	ConferenceInfo string
}

// EmailTemplateRenderer renders subject, HTML and text bodies for a named
// template.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}
