package thread

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by Finalize on a Thread that owns no handle:
	// the zero value, a Thread taken from, or one already finalized.
	ErrEmpty = errors.New("thread: empty handle")

	// ErrResourceExhausted is returned when a thread cannot be spawned
	// because the live-thread budget is used up.
	ErrResourceExhausted = errors.New("thread: resource exhausted")

	// ErrNilBody is returned when Join or Detach is called with a nil body.
	ErrNilBody = errors.New("thread: nil body")
)

// PanicError reports a panic raised by the body of a joinable thread.
type PanicError struct {
	// Name is the name the thread was spawned with.
	Name string
	// Value is the value passed to panic.
	Value any
	// Stack is the body's stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("thread %q panicked: %v", e.Name, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
