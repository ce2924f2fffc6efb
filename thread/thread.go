package thread

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/google/uuid"
)

// osThread is the state shared between a Thread handle and the running body.
type osThread struct {
	id       uuid.UUID
	name     string
	joinable bool

	// handle and hasHandle are written before started is closed.
	handle    Handle
	hasHandle bool
	started   chan struct{}

	// panicErr is written before done is closed.
	panicErr *PanicError
	done     chan struct{}
}

// Thread is an owning handle to a running OS thread.
//
// The zero value is an empty handle. A Thread is owned by one goroutine at a
// time: its methods are not safe for concurrent use. Hand it to another owner
// with Take.
type Thread struct {
	t *osThread
}

// Join spawns body on a new OS thread that Finalize waits for.
//
// Parameters:
//   - body: Function to run; must not be nil
//   - name: Thread name, applied to the OS thread and used in log records
//   - attrs: Optional attributes (priority, logger, backend, limiter)
//
// Returns:
//   - *Thread: Handle owning the new thread
//   - error: ErrNilBody, or an error wrapping ErrResourceExhausted
//
// Example:
//
//	t, err := thread.Join(func() { render(frame) }, "render")
//	if err != nil {
//		return err
//	}
//	if err := t.Finalize(); err != nil {
//		var pe *thread.PanicError
//		if errors.As(err, &pe) {
//			log.Error("render crashed", "panic", pe.Value)
//		}
//	}
func Join(body func(), name string, attrs ...Attribute) (*Thread, error) {
	return spawn(body, name, true, attrs)
}

// Detach spawns body on a new OS thread that Finalize does not wait for.
//
// The caller has to synchronize with body by other means. A panic in a
// detached body is logged and then re-raised, which terminates the process
// like any other unrecovered goroutine panic.
func Detach(body func(), name string, attrs ...Attribute) (*Thread, error) {
	return spawn(body, name, false, attrs)
}

func spawn(body func(), name string, joinable bool, attrs []Attribute) (*Thread, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	a := newAttributes(attrs)

	if err := a.limiter.acquire(); err != nil {
		return nil, fmt.Errorf("spawn thread %q: %w", name, err)
	}

	t := &osThread{
		id:       uuid.New(),
		name:     name,
		joinable: joinable,
		started:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.run(body, a)
	<-t.started

	a.logger.Debug("thread spawned", "name", name, "id", t.id, "joinable", joinable)
	return &Thread{t: t}, nil
}

// run is the goroutine of a spawned thread.
func (t *osThread) run(body func(), a attributes) {
	// Never unlocked: the OS thread exits together with this goroutine, so
	// its name and priority cannot leak into other goroutines.
	runtime.LockOSThread()

	// The slot is returned before done is closed, so a joined thread never
	// counts against the budget.
	defer close(t.done)
	defer a.limiter.release()
	defer t.recoverPanic(a.logger)

	t.handle, t.hasHandle = a.backend.CurrentHandle()
	close(t.started)

	t.apply(a)
	body()
}

// apply names the thread and sets its priority. Failures only degrade the
// thread.
func (t *osThread) apply(a attributes) {
	if err := a.backend.SetName(t.name); err != nil {
		logDegraded(a.logger, "thread name not applied", err, "name", t.name, "id", t.id)
	}
	if err := a.backend.SetPriority(a.priority); err != nil {
		logDegraded(a.logger, "thread priority not applied", err,
			"name", t.name, "id", t.id, "priority", a.priority)
	}
}

// logDegraded logs err at warn level, or at debug level if the platform
// simply lacks the capability.
func logDegraded(l Logger, msg string, err error, args ...any) {
	args = append(args, "err", err)
	if errors.Is(err, errors.ErrUnsupported) {
		l.Debug(msg, args...)
		return
	}
	l.Warn(msg, args...)
}

// recoverPanic turns a panic in a joinable body into a PanicError.
func (t *osThread) recoverPanic(l Logger) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	if t.joinable {
		t.panicErr = &PanicError{Name: t.name, Value: r, Stack: stack}
		return
	}
	l.Error("detached thread panicked", "name", t.name, "id", t.id, "panic", r, "stack", string(stack))
	panic(r)
}

// Take moves the handle into a new Thread and leaves t empty.
func (t *Thread) Take() *Thread {
	n := &Thread{t: t.t}
	t.t = nil
	return n
}

// Assign finalizes the handle t currently owns, if any, and then takes
// ownership of src's handle, leaving src empty.
//
// Returns:
//   - error: The result of finalizing the previous handle, if it had one
func (t *Thread) Assign(src *Thread) error {
	if src == t {
		return nil
	}
	var err error
	if t.t != nil {
		err = t.Finalize()
	}
	if src != nil {
		t.t = src.t
		src.t = nil
	}
	return err
}

// Empty reports whether t owns no handle: it is the zero value, was taken
// from, or was finalized.
func (t *Thread) Empty() bool {
	return t == nil || t.t == nil
}

// Finalize releases the handle. For a joinable thread it first blocks until
// the body returns.
//
// Returns:
//   - error: ErrEmpty if t owns no handle, a *PanicError if the joinable
//     body panicked, nil otherwise
func (t *Thread) Finalize() error {
	if t.Empty() {
		return ErrEmpty
	}
	h := t.t
	t.t = nil

	if !h.joinable {
		return nil
	}
	<-h.done
	if h.panicErr != nil {
		return h.panicErr
	}
	return nil
}

// Handle returns the platform identifier of the thread. It reports false
// when t is empty or the platform has no such identifier.
func (t *Thread) Handle() (Handle, bool) {
	if t.Empty() {
		return 0, false
	}
	return t.t.handle, t.t.hasHandle
}

// ID returns the unique id of the thread, or uuid.Nil if t is empty.
func (t *Thread) ID() uuid.UUID {
	if t.Empty() {
		return uuid.Nil
	}
	return t.t.id
}

// Name returns the name the thread was spawned with, or "" if t is empty.
func (t *Thread) Name() string {
	if t.Empty() {
		return ""
	}
	return t.t.name
}
