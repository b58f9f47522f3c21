package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/formcsrf/internal/feedback"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFeedbackNotify announces an accepted feedback submission.
	TaskFeedbackNotify = "feedback:notify"
)

// FeedbackNotifyPayload identifies the submission to announce.
type FeedbackNotifyPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewFeedbackNotifyTask constructs an Asynq task for entry.
func NewFeedbackNotifyTask(entry feedback.Entry) (*asynq.Task, error) {
	data, err := json.Marshal(FeedbackNotifyPayload{
		ID:    entry.ID.String(),
		Name:  entry.Name,
		Email: entry.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: encode feedback payload: %w", err)
	}
	return asynq.NewTask(TaskFeedbackNotify, data, asynq.MaxRetry(3)), nil
}

// FeedbackNotifyJob processes TaskFeedbackNotify tasks.
type FeedbackNotifyJob struct {
	logger  *slog.Logger
	metrics JobObserver
}

// JobObserver receives the outcome of each processed task.
type JobObserver interface {
	JobProcessed(taskType string, err error)
}

// NewFeedbackNotifyJob constructs the notify job. metrics may be nil.
func NewFeedbackNotifyJob(logger *slog.Logger, metrics JobObserver) *FeedbackNotifyJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackNotifyJob{logger: logger, metrics: metrics}
}

// Handle decodes the payload and records the notification. Malformed payloads
// are not retried.
func (j *FeedbackNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload FeedbackNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ID == "" {
		j.observe(fmt.Errorf("jobs: malformed payload"))
		return asynq.SkipRetry
	}
	j.logger.Info("feedback notification",
		slog.String("id", payload.ID),
		slog.String("name", payload.Name),
		slog.String("email", payload.Email),
	)
	j.observe(nil)
	return nil
}

func (j *FeedbackNotifyJob) observe(err error) {
	if j.metrics != nil {
		j.metrics.JobProcessed(TaskFeedbackNotify, err)
	}
}
