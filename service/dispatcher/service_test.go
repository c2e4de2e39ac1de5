package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lama-assaf/agent-llama/model"
	"github.com/lama-assaf/agent-llama/scheduler/admission"
	submemory "github.com/lama-assaf/agent-llama/service/dao/submission/memory"
	"github.com/lama-assaf/agent-llama/service/messaging/memory"
)

// wire connects a gate to a promotion queue the way the façade does.
func wire(t *testing.T, maxConcurrent int) (*admission.Queue, *memory.Queue[admission.Task]) {
	t.Helper()
	gate, err := admission.New(maxConcurrent)
	assert.NoError(t, err)
	queue := memory.NewQueue[admission.Task](memory.DefaultConfig())
	gate.SetOnPromote(func(task admission.Task) {
		assert.NoError(t, queue.Publish(context.Background(), &task))
	})
	return gate, queue
}

func TestNewRequiresQueueAndGate(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	gate, err := admission.New(1)
	assert.NoError(t, err)
	_, err = New(WithGate(gate))
	assert.Error(t, err)

	svc, err := New(WithGate(gate), WithPromotionQueue(memory.NewQueue[admission.Task](memory.DefaultConfig())))
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestSingleSlotRunsTasksInArrivalOrder(t *testing.T) {
	gate, queue := wire(t, 1)

	var mu sync.Mutex
	var order []string
	runner := RunnerFunc(func(_ context.Context, task admission.Task) error {
		mu.Lock()
		order = append(order, task.ID)
		mu.Unlock()
		return nil
	})

	svc, err := New(
		WithGate(gate),
		WithPromotionQueue(queue),
		WithRunner(runner),
		WithWorkers(2),
	)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, svc.Start(ctx))

	for i := 0; i < 5; i++ {
		_, err := gate.Enqueue(fmt.Sprintf("task-%d", i), "agent", "")
		assert.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		return gate.RunningCount() == 0 && gate.QueuedCount() == 0
	}, 5*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"task-0", "task-1", "task-2", "task-3", "task-4"}, order)

	cancel()
	svc.Shutdown()
}

func TestFailedRunStillFreesSlotAndRecordsError(t *testing.T) {
	gate, queue := wire(t, 1)
	submissionDAO := submemory.New()
	ctx := context.Background()

	for _, id := range []string{"task-ok", "task-bad"} {
		assert.NoError(t, submissionDAO.Save(ctx, model.NewSubmission(id, "session-1", "agent", "")))
	}

	runner := RunnerFunc(func(_ context.Context, task admission.Task) error {
		if task.ID == "task-bad" {
			return errors.New("agent crashed")
		}
		return nil
	})

	svc, err := New(
		WithGate(gate),
		WithPromotionQueue(queue),
		WithRunner(runner),
		WithSubmissionDAO(submissionDAO),
		WithWorkers(1),
	)
	assert.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	assert.NoError(t, svc.Start(runCtx))

	_, err = gate.Enqueue("task-bad", "agent", "")
	assert.NoError(t, err)
	_, err = gate.Enqueue("task-ok", "agent", "")
	assert.NoError(t, err)

	// the failed run must free its slot so task-ok still gets promoted
	assert.Eventually(t, func() bool {
		return gate.RunningCount() == 0 && gate.QueuedCount() == 0
	}, 5*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		bad, err := submissionDAO.Load(ctx, "task-bad")
		if err != nil {
			return false
		}
		ok, err := submissionDAO.Load(ctx, "task-ok")
		if err != nil {
			return false
		}
		return bad.GetState() == model.StateFailed && ok.GetState() == model.StateCompleted
	}, 5*time.Second, 5*time.Millisecond)

	bad, err := submissionDAO.Load(ctx, "task-bad")
	assert.NoError(t, err)
	assert.Equal(t, "agent crashed", bad.Error)

	cancel()
	svc.Shutdown()
}

func TestConcurrencyStaysWithinCapacity(t *testing.T) {
	const maxConcurrent = 3
	gate, queue := wire(t, maxConcurrent)

	var mu sync.Mutex
	var active, peak int
	runner := RunnerFunc(func(_ context.Context, _ admission.Task) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	svc, err := New(
		WithGate(gate),
		WithPromotionQueue(queue),
		WithRunner(runner),
		WithWorkers(8),
	)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, svc.Start(ctx))

	for i := 0; i < 20; i++ {
		_, err := gate.Enqueue(fmt.Sprintf("task-%d", i), "agent", "")
		assert.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		return gate.RunningCount() == 0 && gate.QueuedCount() == 0
	}, 10*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, maxConcurrent)
	assert.Greater(t, peak, 0)

	cancel()
	svc.Shutdown()
}
