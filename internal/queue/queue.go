package queue

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vi8hal/ytc-sub000/internal/model"
	"github.com/vi8hal/ytc-sub000/internal/repository"
)

// AuditTopic carries one message per external post attempt.
const AuditTopic = "post_audits"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used when no broker is
// configured
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartAuditSubscriber drains post audit messages into the post_audits table.
// Inserts are deliberately outside any campaign transaction.
func StartAuditSubscriber(q Queue, auditRepo repository.AuditRepositoryInterface) {
	go func() {
		err := q.Subscribe(AuditTopic, func(payload any) error {
			audit, ok := payload.(*model.PostAudit)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected *model.PostAudit")
				return nil // no retry
			}

			if err := auditRepo.Insert(audit); err != nil {
				log.Println("⚠️ Failed to persist post audit:", err)
				return err // triggers retry in queue
			}
			return nil
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for", AuditTopic, ":", err)
		}
	}()
}
