// Package reminder renders task reminder emails and hands them to a mail
// transport.
package reminder

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/jaekwang-park/task-api/internal/adapter"
	"github.com/jaekwang-park/task-api/internal/model"
)

// MsgSendFailed is the client-facing message for any delivery failure.
const MsgSendFailed = "Error al enviar el email"

const subjectPrefix = "Recordatorio de Tarea: "

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/task_reminder.html"))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/task_reminder.txt"))
)

// Message is a rendered email ready for a Transport.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Receipt confirms a reminder was handed to the transport.
type Receipt struct {
	TaskID string    `json:"task_id"`
	SentTo string    `json:"sent_to"`
	SentAt time.Time `json:"sent_at"`
}

type payload struct {
	UserName        string
	TaskTitle       string
	TaskDescription string
	DueDate         string
}

type Mailer struct {
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
}

func NewMailer(transport Transport, logger *slog.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Send renders the reminder for task and delivers it to user's address.
// Every error is an *adapter.Failure carrying MsgSendFailed.
func (m *Mailer) Send(ctx context.Context, task model.Task, user model.User) (Receipt, error) {
	msg, err := render(task, user)
	if err != nil {
		return Receipt{}, m.fail(ctx, task, user, err)
	}

	if err := m.transport.Send(ctx, msg); err != nil {
		return Receipt{}, m.fail(ctx, task, user, err)
	}

	m.logger.InfoContext(ctx, "reminder sent", "task_id", task.ID, "user_id", user.ID)

	return Receipt{
		TaskID: task.ID,
		SentTo: user.Email,
		SentAt: m.now().UTC(),
	}, nil
}

func (m *Mailer) fail(ctx context.Context, task model.Task, user model.User, cause error) error {
	m.logger.ErrorContext(ctx, "reminder email failed",
		"task_id", task.ID,
		"user_id", user.ID,
		"error", cause,
	)
	return adapter.Fail(MsgSendFailed, cause)
}

func render(task model.Task, user model.User) (Message, error) {
	p := payload{
		UserName:  user.Name,
		TaskTitle: task.Title,
	}
	if task.Description != nil {
		p.TaskDescription = *task.Description
	}
	if task.DueDate != nil {
		p.DueDate = task.DueDate.Format("02/01/2006")
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, p); err != nil {
		return Message{}, fmt.Errorf("failed to render html body: %w", err)
	}
	if err := textTmpl.Execute(&text, p); err != nil {
		return Message{}, fmt.Errorf("failed to render text body: %w", err)
	}

	return Message{
		To:       user.Email,
		ToName:   user.Name,
		Subject:  subjectPrefix + task.Title,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
