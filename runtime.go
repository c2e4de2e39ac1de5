package agentllama

import (
	"context"
	"fmt"

	"github.com/lama-assaf/agent-llama/internal/idgen"
	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dao"
	"github.com/lama-assaf/agent-llama/tracing"
)

// Runtime is the handle callers use to submit, cancel and inspect agent
// tasks. Task ids are minted here, so they are globally unique by
// construction.
type Runtime struct {
	gate          *admission.Queue
	submissionDAO dao.Service[string, model.Submission]
}

// Submit records a submission and requests admission for it. The returned
// outcome is admission.Running when the task was dispatched immediately and
// admission.Queued when it joined the waiting list.
func (r *Runtime) Submit(ctx context.Context, sessionID, kind, payload string) (submission *model.Submission, outcome admission.Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("runtime.Submit %s", kind), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	id := idgen.New()
	span.WithAttributes(map[string]string{"task.id": id, "task.kind": kind})

	submission = model.NewSubmission(id, sessionID, kind, payload)
	// The ledger entry must exist before admission: immediate dispatch fires
	// synchronously and the dispatcher looks the submission up by id.
	if err = r.submissionDAO.Save(ctx, submission); err != nil {
		return nil, "", fmt.Errorf("failed to save submission: %w", err)
	}

	outcome, err = r.gate.Enqueue(id, kind, payload)
	if err != nil {
		_ = r.submissionDAO.Delete(ctx, id)
		return nil, "", err
	}
	if outcome == admission.Queued {
		if submission.MarkQueued() {
			_ = r.submissionDAO.Save(ctx, submission)
		}
	}
	span.WithAttributes(map[string]string{"outcome": string(outcome)})
	return submission, outcome, nil
}

// Cancel removes a still-waiting task from the queue and marks its submission
// canceled. It reports whether anything was cancelled; running tasks are not
// affected (abort the work through the runner's context and let the
// dispatcher free the slot).
func (r *Runtime) Cancel(ctx context.Context, id string) (bool, error) {
	if !r.gate.Cancel(id) {
		return false, nil
	}
	submission, err := r.submissionDAO.Load(ctx, id)
	if err != nil {
		return true, fmt.Errorf("task %s cancelled but submission lookup failed: %w", id, err)
	}
	if submission.CancelWaiting() {
		if err := r.submissionDAO.Save(ctx, submission); err != nil {
			return true, fmt.Errorf("task %s cancelled but submission update failed: %w", id, err)
		}
	}
	return true, nil
}

// Submission returns the ledger entry for the given task id.
func (r *Runtime) Submission(ctx context.Context, id string) (*model.Submission, error) {
	return r.submissionDAO.Load(ctx, id)
}

// Submissions lists ledger entries, optionally filtered (see the submission
// DAO for supported parameters).
func (r *Runtime) Submissions(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Submission, error) {
	return r.submissionDAO.List(ctx, parameters...)
}

// Status returns a snapshot of gate occupancy.
func (r *Runtime) Status() admission.Status {
	return r.gate.Status()
}

// Gate exposes the underlying admission queue for hosts that need direct
// access to its observers.
func (r *Runtime) Gate() *admission.Queue {
	return r.gate
}
