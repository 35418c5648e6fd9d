package service

import (
	"log"
)

// Dispatcher is the slice of the orchestrator an in-process worker
// needs.
type Dispatcher interface {
	DispatchRecipient(recipientID int) error
}

// Worker drains recipient dispatch jobs from a channel. Used for the
// single-binary deployment where no broker is configured.
type Worker struct {
	Dispatcher Dispatcher
	JobChan    <-chan int
}

// Constructor
func NewWorker(dispatcher Dispatcher, jobChan <-chan int) *Worker {
	return &Worker{
		Dispatcher: dispatcher,
		JobChan:    jobChan,
	}
}

// Start begins processing jobs
func (w *Worker) Start() {
	for recipientID := range w.JobChan {
		if err := w.Dispatcher.DispatchRecipient(recipientID); err != nil {
			log.Println("Failed to dispatch recipient:", err)
		}
	}
}
