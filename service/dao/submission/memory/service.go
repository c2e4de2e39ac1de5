package memory

import (
	"context"

	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/service/dao"
	"github.com/lama-assaf/agent-llama/service/dao/store"
)

// StateParameter filters List results by submission state.
const StateParameter = "state"

// Service is an in-memory, thread-safe store for submissions.
type Service struct {
	*store.MemoryStore[string, model.Submission]
}

var _ dao.Service[string, model.Submission] = (*Service)(nil)

// New creates an in-memory submission DAO.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, model.Submission](func(s *model.Submission) string {
			return s.ID
		}),
	}
}

// Save stores or overwrites a submission.
func (s *Service) Save(ctx context.Context, submission *model.Submission) error {
	if submission == nil {
		return dao.ErrNilEntity
	}
	if submission.ID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, submission)
}

// Load returns a submission by id.
func (s *Service) Load(ctx context.Context, id string) (*model.Submission, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.MemoryStore.Load(ctx, id)
}

// List returns stored submissions, optionally filtered by state.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Submission, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(parameters) == 0 {
		return all, nil
	}
	out := make([]*model.Submission, 0, len(all))
	for _, submission := range all {
		if matches(submission, parameters) {
			out = append(out, submission)
		}
	}
	return out, nil
}

func matches(submission *model.Submission, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != StateParameter {
			continue
		}
		switch value := parameter.Value.(type) {
		case model.SubmissionState:
			if submission.GetState() != value {
				return false
			}
		case string:
			if submission.GetState() != model.SubmissionState(value) {
				return false
			}
		}
	}
	return true
}
