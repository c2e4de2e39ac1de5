package agentllama

import (
	"context"
	"log"

	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dao"
	submemory "github.com/lama-assaf/agent-llama/service/dao/submission/memory"
	"github.com/lama-assaf/agent-llama/service/dispatcher"
	"github.com/lama-assaf/agent-llama/service/messaging"
	mmemory "github.com/lama-assaf/agent-llama/service/messaging/memory"
)

// Service is the embeddable admission runtime façade. It wires the admission
// gate, the promotion transport, the dispatcher and the submission ledger.
type Service struct {
	runtime       *Runtime
	config        *Config
	gate          *admission.Queue
	promotions    messaging.Queue[admission.Task]
	dispatcher    *dispatcher.Service
	submissionDAO dao.Service[string, model.Submission]
	runner        dispatcher.Runner
}

// New creates a new admission runtime service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		runtime: &Runtime{},
		config:  DefaultConfig(),
	}
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	s.ensureBaseSetup()

	if s.gate == nil {
		gate, err := admission.New(s.config.Admission.MaxConcurrent)
		if err != nil {
			return err
		}
		s.gate = gate
	}

	// Promotions are bridged onto the messaging queue so that dispatch runs
	// off the enqueuing caller's stack.
	s.gate.SetOnPromote(func(task admission.Task) {
		if err := s.promotions.Publish(context.Background(), &task); err != nil {
			log.Printf("agentllama: failed to publish promotion for task %s: %v", task.ID, err)
		}
	})

	var err error
	s.dispatcher, err = dispatcher.New(
		dispatcher.WithGate(s.gate),
		dispatcher.WithPromotionQueue(s.promotions),
		dispatcher.WithRunner(s.runner),
		dispatcher.WithSubmissionDAO(s.submissionDAO),
		dispatcher.WithWorkers(s.config.Dispatcher.Workers),
	)
	if err != nil {
		return err
	}

	s.runtime.gate = s.gate
	s.runtime.submissionDAO = s.submissionDAO
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.submissionDAO == nil {
		s.submissionDAO = submemory.New()
	}
	if s.promotions == nil {
		config := mmemory.DefaultConfig()
		config.QueueBuffer = s.config.Buffer
		s.promotions = mmemory.NewQueue[admission.Task](config)
	}
	if s.runner == nil {
		s.runner = dispatcher.Nop()
	}
}

// Runtime returns the runtime handle callers submit work through.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Start launches the dispatcher workers.
func (s *Service) Start(ctx context.Context) error {
	return s.dispatcher.Start(ctx)
}

// Shutdown stops the dispatcher workers and waits for them to drain.
func (s *Service) Shutdown() {
	s.dispatcher.Shutdown()
}
