package worker

import "errors"

var (
	errQueueFull    = errors.New("event queue full")
	errPoolClosed   = errors.New("event pool closed")
	errHandlerPanic = errors.New("event handler panicked")
)
