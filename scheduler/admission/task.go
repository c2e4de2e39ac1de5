package admission

import "time"

// Outcome describes the result of an Enqueue call.
type Outcome string

const (
	// Running indicates the task was admitted immediately and now occupies a
	// running slot.
	Running Outcome = "running"

	// Queued indicates all slots were taken and the task joined the tail of
	// the waiting list.
	Queued Outcome = "queued"
)

// Task is a unit of work waiting for (or just granted) admission. Kind and
// Payload are opaque to the queue; they are carried verbatim to the promote
// callback.
type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Payload    string    `json:"payload"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Slot is one unit of occupied running capacity.
type Slot struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	StartedAt time.Time `json:"startedAt"`
}

// Status is a point-in-time snapshot of queue occupancy.
type Status struct {
	Running int `json:"running"`
	Queued  int `json:"queued"`
	Max     int `json:"max"`
}

// PromoteFunc is invoked exactly once per task at the moment it is
// dispatched, either synchronously at enqueue time or later when a completed
// task frees a slot.
type PromoteFunc func(task Task)
