package dispatcher

import (
	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dao"
	"github.com/lama-assaf/agent-llama/service/messaging"
)

// Option customises the dispatcher service.
type Option func(*Service)

// WithPromotionQueue sets the inbound promotion message queue.
func WithPromotionQueue(queue messaging.Queue[admission.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithGate sets the admission queue whose slots the dispatcher frees.
func WithGate(gate *admission.Queue) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// WithRunner sets the task runner.
func WithRunner(runner Runner) Option {
	return func(s *Service) {
		s.runner = runner
	}
}

// WithSubmissionDAO sets the submission store used for bookkeeping.
func WithSubmissionDAO(submissionDAO dao.Service[string, model.Submission]) Option {
	return func(s *Service) {
		s.submissionDAO = submissionDAO
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
