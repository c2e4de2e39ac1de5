// Package dispatcher consumes promotion messages produced by the admission
// gate and executes them through a caller-supplied Runner. It owns the other
// half of the admission contract: every dispatched task is reported back via
// Complete exactly once, success or failure, so running slots never leak.
package dispatcher
