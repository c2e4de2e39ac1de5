package agentllama

import (
	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dao"
	"github.com/lama-assaf/agent-llama/service/dispatcher"
	"github.com/lama-assaf/agent-llama/service/messaging"
	"github.com/lama-assaf/agent-llama/tracing"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the whole configuration at once.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config == nil {
			return
		}
		config.init()
		s.config = config
	}
}

// WithMaxConcurrent sets the admission capacity.
func WithMaxConcurrent(max int) Option {
	return func(s *Service) {
		s.config.Admission.MaxConcurrent = max
	}
}

// WithWorkers sets the number of dispatcher workers.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Dispatcher.Workers = count
	}
}

// WithRunner sets the task runner invoked for every dispatched task.
func WithRunner(runner dispatcher.Runner) Option {
	return func(s *Service) {
		s.runner = runner
	}
}

// WithSubmissionDAO sets the submission ledger store.
func WithSubmissionDAO(submissionDAO dao.Service[string, model.Submission]) Option {
	return func(s *Service) {
		s.submissionDAO = submissionDAO
	}
}

// WithPromotionQueue sets the promotion message queue.
func WithPromotionQueue(queue messaging.Queue[admission.Task]) Option {
	return func(s *Service) {
		s.promotions = queue
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
