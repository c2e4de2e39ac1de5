package dispatcher

import (
	"context"

	"github.com/lama-assaf/agent-llama/scheduler/admission"
)

// Runner executes a dispatched task. Implementations own the actual work –
// typically spawning and supervising an agent subprocess – and should honour
// ctx cancellation. The dispatcher reports completion to the admission gate
// on the runner's behalf.
type Runner interface {
	Run(ctx context.Context, task admission.Task) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, task admission.Task) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, task admission.Task) error {
	return f(ctx, task)
}

// Nop returns a Runner that succeeds immediately without doing anything.
func Nop() Runner {
	return RunnerFunc(func(context.Context, admission.Task) error { return nil })
}
