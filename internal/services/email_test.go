package services

import (
	"context"
	"errors"
	"testing"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html, text})
	return nil
}

type fakeRenderer struct {
	name string
	data any
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	r.name, r.data = name, data
	info := data.(*domain.ConfirmationEmailData).ConferenceInfo
	return "You created a new Conference!", "<pre>" + info + "</pre>", info, nil
}

func TestEmailTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	h := NewEmailTaskHandler(mailer, renderer, discardLogger())

	err := h.Handle(ctx, &domain.Task{
		ID:     1,
		Name:   domain.TaskSendConfirmationEmail,
		Params: map[string]string{"email": "org@example.com", "conferenceInfo": "Name: GopherCon\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "conference_created", renderer.name)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentMail{
		to:      "org@example.com",
		subject: "You created a new Conference!",
		html:    "<pre>Name: GopherCon\n</pre>",
		text:    "Name: GopherCon\n",
	}, mailer.sent[0])
}

func TestEmailTaskHandler_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("ses down")
	mailer := &fakeMailer{err: boom}
	h := NewEmailTaskHandler(mailer, &fakeRenderer{}, discardLogger())

	err := h.Handle(ctx, &domain.Task{Params: map[string]string{"email": "a@example.com"}})
	require.ErrorIs(t, err, boom)

	err = h.Handle(ctx, &domain.Task{Params: map[string]string{}})
	require.Error(t, err)
}
