package notify

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"meetapi/internal/config"
	"meetapi/internal/model"
)

// Mailer queues outbound notification emails. Enqueueing is fire-and-forget:
// implementations log failures instead of returning them, so no user-facing
// operation ever fails because the queue is down.
type Mailer interface {
	QueueWelcomeEmail(toEmail, userName string)
	QueueMeetingCreatedEmail(toEmail, userName string, meeting *model.Meeting)
}

// asynqMailer produces email tasks on a Redis-backed asynq queue.
type asynqMailer struct {
	client *asynq.Client
}

// NewAsynqMailer creates a Mailer producing onto the configured Redis instance.
// The returned closer releases the underlying connection pool.
func NewAsynqMailer(cfg config.RedisConfig) (Mailer, func() error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &asynqMailer{client: client}, client.Close
}

func (m *asynqMailer) QueueWelcomeEmail(toEmail, userName string) {
	m.enqueue(TypeWelcomeEmail, WelcomePayload{
		ToEmail:  toEmail,
		UserName: userName,
	})
}

func (m *asynqMailer) QueueMeetingCreatedEmail(toEmail, userName string, meeting *model.Meeting) {
	m.enqueue(TypeMeetingCreatedEmail, MeetingCreatedPayload{
		ToEmail:     toEmail,
		UserName:    userName,
		MeetingID:   meeting.ID,
		Title:       meeting.Title,
		Description: meeting.Description,
		StartDate:   meeting.StartDate,
		EndDate:     meeting.EndDate,
	})
}

func (m *asynqMailer) enqueue(taskType string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		logMailerError(taskType, err)
		return
	}
	_, err = m.client.Enqueue(
		asynq.NewTask(taskType, b),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		logMailerError(taskType, err)
	}
}

func logMailerError(taskType string, err error) {
	_ = json.NewEncoder(os.Stdout).Encode(map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "error",
		"msg":   "email_enqueue_failed",
		"task":  taskType,
		"error": err.Error(),
	})
}
