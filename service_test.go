package agentllama_test

import (
	"context"
	"embed"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/embed"

	"github.com/lama-assaf/agent-llama"
	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	"github.com/lama-assaf/agent-llama/service/dispatcher"
)

//go:embed testdata/*
var embedFS embed.FS

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	config, err := agentllama.LoadConfig(ctx, "embed:///testdata/config.yaml", &embedFS)
	assert.Nil(t, err)
	assert.NotNil(t, config)
	assert.Equal(t, 4, config.Admission.MaxConcurrent)
	assert.Equal(t, 8, config.Dispatcher.Workers)
	assert.Equal(t, 64, config.Buffer)
}

func TestNewRejectsInvalidCapacity(t *testing.T) {
	srv, err := agentllama.New(agentllama.WithMaxConcurrent(-1))
	assert.Error(t, err)
	assert.Nil(t, srv)
}

func TestServiceGatesSubmissions(t *testing.T) {
	release := make(chan struct{})
	runner := dispatcher.RunnerFunc(func(ctx context.Context, _ admission.Task) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	srv, err := agentllama.New(
		agentllama.WithMaxConcurrent(2),
		agentllama.WithWorkers(4),
		agentllama.WithRunner(runner),
	)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()

	rt := srv.Runtime()

	first, outcome, err := rt.Submit(ctx, "session-1", "chat", "first prompt")
	assert.NoError(t, err)
	assert.Equal(t, admission.Running, outcome)

	second, outcome, err := rt.Submit(ctx, "session-1", "chat", "second prompt")
	assert.NoError(t, err)
	assert.Equal(t, admission.Running, outcome)

	third, outcome, err := rt.Submit(ctx, "session-2", "scaffold", "third prompt")
	assert.NoError(t, err)
	assert.Equal(t, admission.Queued, outcome)
	assert.Equal(t, model.StateQueued, third.GetState())

	status := rt.Status()
	assert.Equal(t, 2, status.Running)
	assert.Equal(t, 1, status.Queued)
	assert.Equal(t, 2, status.Max)

	close(release)

	assert.Eventually(t, func() bool {
		status := rt.Status()
		return status.Running == 0 && status.Queued == 0
	}, 5*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		for _, submission := range []*model.Submission{first, second, third} {
			loaded, err := rt.Submission(ctx, submission.ID)
			if err != nil || loaded.GetState() != model.StateCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond)

	completed, err := rt.Submissions(ctx)
	assert.NoError(t, err)
	assert.Len(t, completed, 3)
}

func TestRuntimeCancelWaitingSubmission(t *testing.T) {
	release := make(chan struct{})
	runner := dispatcher.RunnerFunc(func(ctx context.Context, _ admission.Task) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	srv, err := agentllama.New(
		agentllama.WithMaxConcurrent(1),
		agentllama.WithRunner(runner),
	)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()

	rt := srv.Runtime()

	running, outcome, err := rt.Submit(ctx, "session-1", "chat", "")
	assert.NoError(t, err)
	assert.Equal(t, admission.Running, outcome)

	waiting, outcome, err := rt.Submit(ctx, "session-1", "chat", "")
	assert.NoError(t, err)
	assert.Equal(t, admission.Queued, outcome)

	cancelled, err := rt.Cancel(ctx, waiting.ID)
	assert.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, model.StateCanceled, waiting.GetState())

	// unknown and running ids are not cancellable
	cancelled, err = rt.Cancel(ctx, "never-seen")
	assert.NoError(t, err)
	assert.False(t, cancelled)
	cancelled, err = rt.Cancel(ctx, running.ID)
	assert.NoError(t, err)
	assert.False(t, cancelled)

	close(release)

	assert.Eventually(t, func() bool {
		loaded, err := rt.Submission(ctx, running.ID)
		return err == nil && loaded.GetState() == model.StateCompleted
	}, 5*time.Second, 5*time.Millisecond)

	// the cancelled task never ran
	loaded, err := rt.Submission(ctx, waiting.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StateCanceled, loaded.GetState())
	assert.Nil(t, loaded.StartedAt)
}
