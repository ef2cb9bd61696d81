package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"vecino/config"
	"vecino/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitDeliveryWorker runs the async worker in background: it consumes
// redelivery tasks enqueued for rescheduled notifications and drives the
// periodic due-sweep that picks up anything the task queue missed.
func InitDeliveryWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRedeliver, handleRedeliverTask(notifSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Periodic sweep: the safety net for at-least-once redelivery.
	go runSweepLoop(notifSvc)

	// Start async worker with retry logic
	go func() {
		log.Println("[DeliveryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DeliveryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DeliveryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleRedeliverTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p RedeliveryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[DeliveryWorker] invalid payload: %v", err)
			return err
		}

		if err := notifSvc.DispatchDue(ctx, p.NotificationID); err != nil {
			log.Printf("[DeliveryWorker] redelivery failed for %s: %v", p.NotificationID, err)
			return err
		}
		return nil
	}
}

// runSweepLoop queries for due pending notifications at a fixed interval.
// Multiple portal instances may run this concurrently; the conditional
// pending->dispatching claim keeps each record on a single worker.
func runSweepLoop(notifSvc notification.NotificationService) {
	interval := time.Duration(config.AppConfig.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := context.Background()
	for range ticker.C {
		dispatched, err := notifSvc.Sweep(ctx, time.Now())
		if err != nil {
			log.Printf("[DeliveryWorker] sweep failed: %v", err)
			continue
		}
		if dispatched > 0 {
			log.Printf("[DeliveryWorker] sweep dispatched %d due notifications", dispatched)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[DeliveryWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
