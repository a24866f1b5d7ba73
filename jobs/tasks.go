package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeTokenPurge is the task type for deleting expired token rows.
	TaskTypeTokenPurge = "auth:purge_tokens"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// WelcomeEmailPayload builds the post-registration welcome mail payload.
func WelcomeEmailPayload(email, name string) SendEmailPayload {
	return SendEmailPayload{
		To:      email,
		Subject: "Welcome to Tradepost",
		Body:    fmt.Sprintf("Hi %s, your account is ready.", name),
	}
}

// NewWelcomeEmailTask builds the post-registration welcome mail task.
func NewWelcomeEmailTask(email, name string) (*asynq.Task, error) {
	return NewSendEmailTask(WelcomeEmailPayload(email, name))
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: wire to SMTP once the mail relay is provisioned.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// TokenPurgePayload configures the expired-token sweep.
type TokenPurgePayload struct {
	// RetentionHours keeps expired rows around for audit before deletion.
	RetentionHours int `json:"retention_hours"`
}

// NewTokenPurgeTask constructs an Asynq task for the token sweep.
func NewTokenPurgeTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(TokenPurgePayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTokenPurge, data), nil
}
