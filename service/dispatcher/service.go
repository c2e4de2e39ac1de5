package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dao"
	"github.com/lama-assaf/agent-llama/service/messaging"
	"github.com/lama-assaf/agent-llama/tracing"
)

// Config represents dispatcher service configuration.
type Config struct {
	// WorkerCount is the number of workers consuming promotion messages. It
	// should be at least the gate's capacity, otherwise dispatch itself
	// becomes the bottleneck.
	WorkerCount int
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5,
	}
}

// Service runs promoted tasks through the configured Runner.
type Service struct {
	config        Config
	queue         messaging.Queue[admission.Task]
	gate          *admission.Queue
	runner        Runner
	submissionDAO dao.Service[string, model.Submission]

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new dispatcher service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("promotion queue is required")
	}
	if s.gate == nil {
		return nil, fmt.Errorf("admission gate is required")
	}
	if s.runner == nil {
		s.runner = Nop()
	}
	return s, nil
}

// Start launches the worker goroutines.
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes promotion messages from the queue.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("dispatcher worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// processMessage runs a single promoted task and frees its slot.
func (s *Service) processMessage(ctx context.Context, message messaging.Message[admission.Task]) error {
	task := message.T()

	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("dispatcher.run %s", task.Kind), "CONSUMER")
	span.WithAttributes(map[string]string{"task.id": task.ID, "task.kind": task.Kind})

	s.markRunning(ctx, task.ID)

	runErr := s.runner.Run(ctx, *task)

	// The slot is freed no matter how the run ended; a failed run consumed
	// its capacity all the same and re-admission is the caller's decision.
	s.gate.Complete(task.ID)
	s.markFinished(ctx, task.ID, runErr)
	tracing.EndSpan(span, runErr)

	if runErr != nil {
		log.Printf("dispatcher: task %s (%s) failed: %v", task.ID, task.Kind, runErr)
	}
	return message.Ack()
}

func (s *Service) markRunning(ctx context.Context, id string) {
	if s.submissionDAO == nil {
		return
	}
	submission, err := s.submissionDAO.Load(ctx, id)
	if err != nil || submission == nil {
		return
	}
	submission.Start()
	_ = s.submissionDAO.Save(ctx, submission)
}

func (s *Service) markFinished(ctx context.Context, id string, runErr error) {
	if s.submissionDAO == nil {
		return
	}
	submission, err := s.submissionDAO.Load(ctx, id)
	if err != nil || submission == nil {
		return
	}
	if runErr != nil {
		submission.Fail(runErr)
	} else {
		submission.Finish()
	}
	_ = s.submissionDAO.Save(ctx, submission)
}

// Shutdown stops the dispatcher workers and waits for them to drain.
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
