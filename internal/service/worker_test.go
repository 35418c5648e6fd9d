package service_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobfairhq/notification-service-go/internal/service"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	seen    []int
	failFor map[int]bool
}

func (d *recordingDispatcher) DispatchRecipient(recipientID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, recipientID)
	if d.failFor[recipientID] {
		return fmt.Errorf("dispatch %d failed", recipientID)
	}
	return nil
}

func TestWorkerDrainsJobChannel(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	jobs := make(chan int, 3)
	worker := service.NewWorker(dispatcher, jobs)

	done := make(chan struct{})
	go func() {
		worker.Start()
		close(done)
	}()

	jobs <- 1
	jobs <- 2
	jobs <- 3
	close(jobs)
	<-done

	assert.Equal(t, []int{1, 2, 3}, dispatcher.seen)
}

func TestWorkerKeepsGoingAfterDispatchError(t *testing.T) {
	dispatcher := &recordingDispatcher{failFor: map[int]bool{2: true}}
	jobs := make(chan int, 3)
	worker := service.NewWorker(dispatcher, jobs)

	done := make(chan struct{})
	go func() {
		worker.Start()
		close(done)
	}()

	jobs <- 1
	jobs <- 2
	jobs <- 3
	close(jobs)
	<-done

	assert.Equal(t, []int{1, 2, 3}, dispatcher.seen, "a failing job must not stop the worker")
}
