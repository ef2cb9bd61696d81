package cron

import (
	"encoding/json"
	"time"

	"vecino/config"

	"github.com/hibiken/asynq"
)

// TypeRedeliver is the task type for one rescheduled delivery attempt.
const TypeRedeliver = "notification:redeliver"

// RedeliveryPayload carries the notification due for redelivery.
type RedeliveryPayload struct {
	NotificationID string `json:"notificationId"`
}

// TaskScheduler enqueues redelivery tasks on the asynq queue. It implements
// notification.RedeliveryScheduler.
type TaskScheduler struct {
	client *asynq.Client
}

// NewTaskScheduler creates the asynq client used to enqueue redeliveries.
func NewTaskScheduler() *TaskScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	return &TaskScheduler{client: client}
}

// ScheduleRedelivery enqueues a task processed at the notification's next
// due time. The periodic sweep remains the safety net if the queue is lost.
func (t *TaskScheduler) ScheduleRedelivery(notificationID string, at time.Time) error {
	b, err := json.Marshal(RedeliveryPayload{NotificationID: notificationID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeRedeliver, b)
	_, err = t.client.Enqueue(task, asynq.ProcessAt(at))
	return err
}

// Close releases the underlying queue connection.
func (t *TaskScheduler) Close() error {
	return t.client.Close()
}
