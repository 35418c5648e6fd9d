package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// TopicDispatch carries per-recipient dispatch jobs for scheduled and
// asynchronous campaign sends.
const TopicDispatch = "campaign_dispatch"

// DispatchJob asks a worker to deliver all eligible channels for one
// campaign recipient.
type DispatchJob struct {
	CampaignID  int `json:"campaign_id"`
	RecipientID int `json:"recipient_id"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with bounded retry, used for
// single-binary deployments and tests.
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

// RecipientDispatcher is the slice of the orchestrator the dispatch
// subscriber needs.
type RecipientDispatcher interface {
	DispatchRecipient(recipientID int) error
}

// StartDispatchSubscriber wires queued dispatch jobs into the
// orchestrator's single-recipient path. The subscription is registered
// before return so a publish immediately afterwards cannot miss it.
func StartDispatchSubscriber(q Queue, dispatcher RecipientDispatcher) error {
	return q.Subscribe(TopicDispatch, func(payload any) error {
		job, ok := payload.(DispatchJob)
		if !ok {
			log.Println("⚠️ Invalid payload type, expected DispatchJob")
			return nil // malformed, no retry
		}

		log.Println("📩 Processing queued dispatch for recipient ID:", job.RecipientID)

		if err := dispatcher.DispatchRecipient(job.RecipientID); err != nil {
			log.Println("⚠️ Failed to dispatch recipient:", err)
			return err // triggers retry in queue
		}

		return nil
	})
}
