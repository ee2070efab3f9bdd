// internal/notify/notify.go
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Email is one outbound notification message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer enqueues notification emails. Delivery is at-most-once and
// decoupled from the caller: a full queue drops the message and a failed
// send is logged, never retried, never surfaced to the parent operation.
type Mailer interface {
	Enqueue(email Email)
}

// Channel is one delivery mechanism for emails.
type Channel interface {
	Name() string
	Send(ctx context.Context, email Email) error
	IsEnabled() bool
}

// Queue is an in-process outbound email queue with a single worker.
type Queue struct {
	channel Channel
	logger  *slog.Logger

	mu     sync.Mutex
	ch     chan Email
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue delivering through the given channel.
func NewQueue(channel Channel, logger *slog.Logger) *Queue {
	q := &Queue{
		channel: channel,
		logger:  logger,
		ch:      make(chan Email, 256),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue hands an email to the worker without blocking the caller. When
// the queue is full or closed the message is dropped and logged.
func (q *Queue) Enqueue(email Email) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("Dropping email, queue closed", "to", email.To, "subject", email.Subject)
		return
	}
	select {
	case q.ch <- email:
	default:
		q.logger.Warn("Dropping email, queue full", "to", email.To, "subject", email.Subject)
	}
}

// Close stops accepting emails and waits for in-flight sends to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for email := range q.ch {
		if !q.channel.IsEnabled() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := q.channel.Send(ctx, email); err != nil {
			// Notification-only side effect; log and move on.
			q.logger.Error("Failed to send email", "channel", q.channel.Name(), "to", email.To, "error", err)
		}
		cancel()
	}
}

// NopMailer discards all emails. Used in tests and when SMTP is not configured.
type NopMailer struct{}

// Enqueue discards the email.
func (NopMailer) Enqueue(Email) {}
