package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lama-assaf/agent-llama/scheduler/admission"
)

func TestQueuePublishConsumeAck(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[admission.Task](config)
	ctx := context.Background()

	task := admission.Task{ID: "task-1", Kind: "chat", Payload: "hello"}
	assert.NoError(t, queue.Publish(ctx, &task))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, queue.Size())

	got := message.T()
	assert.Equal(t, "task-1", got.ID)
	assert.Equal(t, "chat", got.Kind)
	assert.Equal(t, "hello", got.Payload)

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack must be rejected")
}

func TestQueueRetriesThenDeadLetters(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[admission.Task](config)
	ctx := context.Background()

	assert.NoError(t, queue.Publish(ctx, &admission.Task{ID: "retry-1"}))

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(nil))

	// requeued after the retry delay
	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	message, err = queue.Consume(ctxTimeout)
	assert.NoError(t, err)

	// retries exhausted, message moves to the dead letter list
	assert.NoError(t, message.Nack(nil))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[admission.Task](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := admission.Task{ID: "task-1"}
	assert.Error(t, queue.Publish(ctx, &task))

	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(ctxTimeout)
	assert.Error(t, err)

	// queue usable again with a live context
	live := context.Background()
	assert.NoError(t, queue.Publish(live, &task))
	message, err := queue.Consume(live)
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
