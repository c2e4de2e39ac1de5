// Package admission gates concurrent execution of externally defined tasks
// against a fixed capacity.
//
// A Queue admits a task immediately when a running slot is free, otherwise it
// buffers the task in arrival order. Whenever a running task completes, the
// longest-waiting task is promoted into the freed slot and the registered
// promote callback fires for it. The queue never executes anything itself –
// the callback consumer owns the task lifecycle and must report completion
// back via Complete, or the slot leaks.
//
// The queue is a pure in-memory bookkeeping structure: Enqueue and Complete
// are synchronous, perform no I/O and are safe for concurrent use.
package admission
