package admission

import (
	"container/list"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lama-assaf/agent-llama/internal/clock"
)

// ErrDuplicateID is returned when Enqueue is called with an id that is
// already running or already waiting. Detect it with errors.Is.
var ErrDuplicateID = errors.New("admission: duplicate task id")

// Queue caps how many tasks may run simultaneously. Excess tasks wait in
// strict arrival order; completing a running task backfills the freed slot
// with the longest-waiting task.
//
// All methods are safe for concurrent use. The zero value is not usable –
// construct with New.
type Queue struct {
	mu        sync.Mutex
	max       int
	running   map[string]*Slot
	waiting   *list.List // of *Task, front = longest waiting
	waitIndex map[string]*list.Element
	onPromote PromoteFunc
}

// New creates a Queue with the given capacity. A non-positive capacity is a
// static misconfiguration and fails fast; it never silently defaults.
func New(maxConcurrent int) (*Queue, error) {
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("admission: maxConcurrent must be positive, got %d", maxConcurrent)
	}
	return &Queue{
		max:       maxConcurrent,
		running:   make(map[string]*Slot),
		waiting:   list.New(),
		waitIndex: make(map[string]*list.Element),
	}, nil
}

// SetOnPromote registers the promote callback; a later call replaces the
// former. The callback runs after the queue's lock has been released, so it
// may re-enter Enqueue or Complete without deadlocking.
func (q *Queue) SetOnPromote(fn PromoteFunc) {
	q.mu.Lock()
	q.onPromote = fn
	q.mu.Unlock()
}

// Enqueue admits the task immediately when a slot is free, returning Running
// and firing the promote callback synchronously. Otherwise the task joins the
// tail of the waiting list and Queued is returned. A task is never dropped.
//
// The id must not already be known to the queue; a duplicate is rejected with
// ErrDuplicateID and leaves state untouched.
func (q *Queue) Enqueue(id, kind, payload string) (Outcome, error) {
	q.mu.Lock()
	if _, ok := q.running[id]; ok {
		q.mu.Unlock()
		return "", fmt.Errorf("%w: %q is already running", ErrDuplicateID, id)
	}
	if _, ok := q.waitIndex[id]; ok {
		q.mu.Unlock()
		return "", fmt.Errorf("%w: %q is already waiting", ErrDuplicateID, id)
	}

	now := clock.Now()
	if len(q.running) < q.max {
		q.running[id] = &Slot{ID: id, Kind: kind, StartedAt: now}
		fn := q.onPromote
		q.mu.Unlock()
		if fn != nil {
			fn(Task{ID: id, Kind: kind, Payload: payload, EnqueuedAt: now})
		}
		return Running, nil
	}

	task := &Task{ID: id, Kind: kind, Payload: payload, EnqueuedAt: now}
	q.waitIndex[id] = q.waiting.PushBack(task)
	q.mu.Unlock()
	return Queued, nil
}

// Complete frees the slot held by id and promotes at most one waiting task –
// the one that has been waiting longest – firing the promote callback for it.
// Promotion only ever happens here; there is no polling sweep.
//
// Completing an id that is not running is a harmless no-op: it logs a
// diagnostic and returns false so hosts can track suspected slot leaks.
func (q *Queue) Complete(id string) bool {
	q.mu.Lock()
	if _, ok := q.running[id]; !ok {
		q.mu.Unlock()
		log.Printf("admission: ignoring Complete(%q) - task is not running", id)
		return false
	}
	delete(q.running, id)

	var promoted *Task
	if head := q.waiting.Front(); head != nil && len(q.running) < q.max {
		promoted = q.waiting.Remove(head).(*Task)
		delete(q.waitIndex, promoted.ID)
		q.running[promoted.ID] = &Slot{ID: promoted.ID, Kind: promoted.Kind, StartedAt: clock.Now()}
	}
	fn := q.onPromote
	q.mu.Unlock()

	if promoted != nil && fn != nil {
		fn(*promoted)
	}
	return true
}

// Cancel removes a still-waiting task from the waiting list. It returns false
// when the id is not waiting (running tasks cannot be cancelled here – abort
// the work and call Complete instead). Arrival order of the remaining waiters
// is untouched and running accounting is never affected.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	elem, ok := q.waitIndex[id]
	if !ok {
		return false
	}
	q.waiting.Remove(elem)
	delete(q.waitIndex, id)
	return true
}

// RunningCount returns the number of occupied slots.
func (q *Queue) RunningCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.running)
}

// QueuedCount returns the number of waiting tasks.
func (q *Queue) QueuedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiting.Len()
}

// IsRunning reports whether id currently occupies a running slot.
func (q *Queue) IsRunning(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.running[id]
	return ok
}

// Status returns a snapshot of queue occupancy, valid only at the instant of
// the call.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{Running: len(q.running), Queued: q.waiting.Len(), Max: q.max}
}

// RunningSlots returns a copy of the current running set.
func (q *Queue) RunningSlots() []Slot {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Slot, 0, len(q.running))
	for _, slot := range q.running {
		out = append(out, *slot)
	}
	return out
}

// Waiting returns a copy of the waiting list in arrival order.
func (q *Queue) Waiting() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Task, 0, q.waiting.Len())
	for elem := q.waiting.Front(); elem != nil; elem = elem.Next() {
		out = append(out, *elem.Value.(*Task))
	}
	return out
}
