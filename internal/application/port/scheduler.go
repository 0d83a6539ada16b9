package port

import "time"

// Timer is a cancellable deferred task.
type Timer interface {
	// Stop cancels the task. It returns false if the task already ran or
	// was already stopped. A stopped task never runs.
	Stop() bool
}

// Scheduler creates deferred tasks that run on the main loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Dispatcher moves work on and off the main loop.
type Dispatcher interface {
	// Post queues fn to run on the main loop.
	Post(fn func())
	// Background runs fn off the main loop. Results must be handed back
	// through Post.
	Background(fn func())
}
