package services

import (
	"context"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

// EmailTaskHandler delivers the confirmation e-mail queued when a
// conference is created.
type EmailTaskHandler struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	log      *slog.Logger
}

var _ domain.TaskHandler = (*EmailTaskHandler)(nil)

// NewEmailTaskHandler returns a handler for TaskSendConfirmationEmail.
func NewEmailTaskHandler(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) *EmailTaskHandler {
	return &EmailTaskHandler{mailer: mailer, renderer: renderer, log: logger}
}

func (h *EmailTaskHandler) Handle(ctx context.Context, t *domain.Task) error {
	data := &domain.ConfirmationEmailData{
		Email:          t.Params["email"],
		ConferenceInfo: t.Params["conferenceInfo"],
	}
	if data.Email == "" {
		return fmt.Errorf("task %d: missing email parameter", t.ID)
	}
	subject, htmlBody, textBody, err := h.renderer.Render("conference_created", data)
	if err != nil {
		return fmt.Errorf("failed to render conference_created template: %w", err)
	}
	if err := h.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	h.log.InfoContext(ctx, "confirmation email sent", "to", data.Email, "task", t.ID)
	return nil
}
