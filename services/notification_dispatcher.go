package services

import (
	"context"
	"log"
	"sync"
	"time"

	"renascerConnectAPI/internal/types/notification"
)

// NotificationDispatcher drains the outbox: a small worker pool marks rows as
// sent (the only delivery channel is in-app), a ticker promotes scheduled
// rows, and another one sweeps expired ones.
type NotificationDispatcher struct {
	service  *NotificationService
	workers  int
	jobQueue chan *notification.Notification
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()
	go dispatcher.processScheduledNotifications()
	go dispatcher.cleanupExpiredNotifications()

	return dispatcher
}

// Enqueue hands a pending notification to the worker pool. Drops (and logs)
// when the queue is full rather than blocking the caller's request.
func (d *NotificationDispatcher) Enqueue(notif *notification.Notification) {
	select {
	case d.jobQueue <- notif:
	default:
		log.Printf("Notification queue full, dropping %s for user %s", notif.ID, notif.UserID)
	}
}

func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case notif := <-d.jobQueue:
			d.processJob(notif)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(notif *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `UPDATE notifications SET status = $1, sent_at = NOW() WHERE id = $2 AND status = $3`
	_, err := d.service.db.Exec(ctx, query,
		notification.StatusSent, notif.ID, notification.StatusPending)
	if err != nil {
		log.Printf("Failed to mark notification %s as sent: %v", notif.ID, err)
	}
}

// processScheduledNotifications promotes rows whose scheduled_for has passed.
func (d *NotificationDispatcher) processScheduledNotifications() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			query := `
			UPDATE notifications
			SET status = $1, sent_at = NOW()
			WHERE status = $2 AND scheduled_for IS NOT NULL AND scheduled_for <= NOW()
			`
			if _, err := d.service.db.Exec(ctx, query,
				notification.StatusSent, notification.StatusPending); err != nil {
				log.Printf("Failed to process scheduled notifications: %v", err)
			}
			cancel()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) cleanupExpiredNotifications() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			result, err := d.service.db.Exec(ctx,
				"DELETE FROM notifications WHERE expires_at < NOW()")
			if err != nil {
				log.Printf("Failed to cleanup expired notifications: %v", err)
			} else if result.RowsAffected() > 0 {
				log.Printf("Cleaned up %d expired notifications", result.RowsAffected())
			}
			cancel()
		case <-d.stopChan:
			return
		}
	}
}
