package thread

import "log/slog"

// Priority is the scheduling class a thread asks for.
type Priority int

const (
	// Low yields to normal threads.
	Low Priority = iota + 1
	// Normal is the platform default.
	Normal
	// High is favoured over normal threads.
	High
	// Realtime is the highest priority available.
	Realtime
)

// String returns the string representation of a Priority.
func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case Realtime:
		return "realtime"
	default:
		return "unknown"
	}
}

// Logger is the logging surface the package writes to. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Attribute configures a spawned thread.
type Attribute func(*attributes)

type attributes struct {
	priority Priority
	logger   Logger
	backend  Backend
	limiter  *Limiter
}

func newAttributes(attrs []Attribute) attributes {
	a := attributes{
		priority: Normal,
		backend:  platform,
		limiter:  DefaultLimiter(),
	}
	for _, attr := range attrs {
		attr(&a)
	}
	if a.logger == nil {
		a.logger = slog.Default().With("tag", "threadsync")
	}
	return a
}

// WithPriority sets the scheduling priority. The default is Normal.
func WithPriority(p Priority) Attribute {
	return func(a *attributes) {
		a.priority = p
	}
}

// WithLogger sets the logger for lifecycle and failure records. The default
// is slog.Default() with tag=threadsync.
func WithLogger(l Logger) Attribute {
	return func(a *attributes) {
		a.logger = l
	}
}

// WithBackend replaces the platform backend that names the thread and sets
// its priority.
func WithBackend(b Backend) Attribute {
	return func(a *attributes) {
		a.backend = b
	}
}

// WithLimiter counts the thread against l instead of DefaultLimiter.
// A nil Limiter disables the budget.
func WithLimiter(l *Limiter) Attribute {
	return func(a *attributes) {
		a.limiter = l
	}
}
