package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []capturedMail
	err  error
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, capturedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newTestMux(sender *fakeSender) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	NewHandler(sender, "https://meet.example.com").Register(mux)
	return mux
}

func mustTask(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, b)
}

func TestHandleWelcome(t *testing.T) {
	t.Run("renders and sends", func(t *testing.T) {
		sender := &fakeSender{}
		mux := newTestMux(sender)

		task := mustTask(t, TypeWelcomeEmail, WelcomePayload{
			ToEmail:  "ada@example.com",
			UserName: "Ada",
		})
		require.NoError(t, mux.ProcessTask(context.Background(), task))

		require.Len(t, sender.sent, 1)
		mail := sender.sent[0]
		assert.Equal(t, "ada@example.com", mail.to)
		assert.Contains(t, mail.body, "Welcome, Ada!")
		assert.Contains(t, mail.body, "https://meet.example.com")
	})

	t.Run("malformed payload fails the task", func(t *testing.T) {
		sender := &fakeSender{}
		mux := newTestMux(sender)

		err := mux.ProcessTask(context.Background(), asynq.NewTask(TypeWelcomeEmail, []byte("{not json")))
		assert.Error(t, err)
		assert.Empty(t, sender.sent)
	})

	t.Run("delivery failure surfaces for retry", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("smtp unreachable")}
		mux := newTestMux(sender)

		task := mustTask(t, TypeWelcomeEmail, WelcomePayload{ToEmail: "ada@example.com", UserName: "Ada"})
		err := mux.ProcessTask(context.Background(), task)
		assert.ErrorContains(t, err, "smtp unreachable")
	})
}

func TestHandleMeetingCreated(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	sender := &fakeSender{}
	mux := newTestMux(sender)

	task := mustTask(t, TypeMeetingCreatedEmail, MeetingCreatedPayload{
		ToEmail:     "ada@example.com",
		UserName:    "Ada",
		MeetingID:   "meeting-1",
		Title:       "Planning",
		Description: "Quarterly planning session",
		StartDate:   start,
		EndDate:     start.Add(time.Hour),
	})
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "ada@example.com", mail.to)
	assert.Contains(t, mail.subject, "Planning")
	assert.Contains(t, mail.body, "Quarterly planning session")
	assert.Contains(t, mail.body, "https://meet.example.com/meetings/meeting-1")
}
