package hb

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Tracer receives the synchronization edges of a primitive.
//
// obj identifies the synchronization object; primitives pass their own
// address. Implementations must be safe for concurrent use and must not call
// back into the primitive.
type Tracer interface {
	// Acquire records that the calling goroutine acquired obj.
	Acquire(obj uintptr)
	// Release records an exclusive release of obj.
	Release(obj uintptr)
	// ReleaseMerge records a shared release of obj: the release clock keeps
	// the edges of other holders that released it concurrently.
	ReleaseMerge(obj uintptr)
}

// Conflict kinds, named after the order of the two accesses.
const (
	// WriteWrite is two unordered writes.
	WriteWrite = "write-write"
	// ReadWrite is a write unordered with an earlier read.
	ReadWrite = "read-write"
	// WriteRead is a read unordered with an earlier write.
	WriteRead = "write-read"
)

// Violation is a pair of accesses to the same variable that no reported
// synchronization edge orders.
type Violation struct {
	// Var is the name the accesses were reported under.
	Var string
	// Kind is WriteWrite, ReadWrite or WriteRead.
	Kind string
	// Current is the goroutine that performed the later access.
	Current uint64
	// Previous is the goroutine that performed the earlier access.
	Previous uint64
	// PreviousClock is the logical time of the earlier access.
	PreviousClock uint64
	// Observed is what Current knew of Previous at the time: Observed < PreviousClock.
	Observed uint64
	// CurrentStack and PreviousStack are the call sites of the two accesses.
	CurrentStack  string
	PreviousStack string
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("%s on %q: goroutine %d saw goroutine %d at %d, access was at %d",
		v.Kind, v.Var, v.Current, v.Previous, v.Observed, v.PreviousClock)
}

// Report renders the violation with both call sites, in the layout of a
// race report.
func (v Violation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s on %q\n", v.Kind, v.Var)
	fmt.Fprintf(&b, "Access by goroutine %d:\n%s", v.Current, v.CurrentStack)
	fmt.Fprintf(&b, "\nPrevious access by goroutine %d:\n%s", v.Previous, v.PreviousStack)
	return b.String()
}

// key identifies the location of a violation regardless of which goroutine
// detected it first.
func (v Violation) key() string {
	g1, g2 := v.Current, v.Previous
	if g1 > g2 {
		g1, g2 = g2, g1
	}
	return fmt.Sprintf("%s:%s:%d:%d", v.Kind, v.Var, g1, g2)
}

// epoch is one access: goroutine gid at its own logical time clock, from
// the call site stored under stack.
type epoch struct {
	gid   uint64
	clock uint64
	stack uint64
}

// variable is the shadow state of one audited variable.
type variable struct {
	write epoch            // gid 0 means never written
	reads map[uint64]epoch // last read per goroutine since the last write
}

// Auditor tracks vector clocks per goroutine and release clocks per
// synchronization object, and checks reported accesses against them.
//
// An Auditor implements Tracer. The zero value is not usable; call NewAuditor.
//
// Thread Safety: All methods are safe for concurrent use. Every call is
// serialized on one mutex, so the auditor itself adds no ordering that the
// audited program does not have: it never joins clocks on its own.
type Auditor struct {
	mu         sync.Mutex
	threads    map[uint64]VectorClock
	objects    map[uintptr]VectorClock
	vars       map[string]*variable
	violations []Violation
	seen       map[string]struct{}
	stacks     *depot
}

var _ Tracer = (*Auditor)(nil)

// NewAuditor returns an auditor with no history.
func NewAuditor() *Auditor {
	a := &Auditor{}
	a.reset()
	return a
}

func (a *Auditor) reset() {
	a.threads = make(map[uint64]VectorClock)
	a.objects = make(map[uintptr]VectorClock)
	a.vars = make(map[string]*variable)
	a.violations = nil
	a.seen = make(map[string]struct{})
	a.stacks = &depot{}
}

// clockFor returns the clock of goroutine gid, creating it on first use.
// A new goroutine starts at time 1 so that its first accesses are
// distinguishable from "never seen". The caller holds a.mu.
func (a *Auditor) clockFor(gid uint64) VectorClock {
	c, ok := a.threads[gid]
	if !ok {
		c = NewVectorClock()
		c.Set(gid, 1)
		a.threads[gid] = c
	}
	return c
}

// Acquire implements Tracer: Ct := Ct ⊔ Lm.
func (a *Auditor) Acquire(obj uintptr) {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.clockFor(gid)
	if l, ok := a.objects[obj]; ok {
		c.Join(l)
	}
}

// Release implements Tracer: Lm := Ct, Ct[t]++.
func (a *Auditor) Release(obj uintptr) {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.clockFor(gid)
	a.objects[obj] = c.Clone()
	c.Increment(gid)
}

// ReleaseMerge implements Tracer: Lm := Lm ⊔ Ct, Ct[t]++.
func (a *Auditor) ReleaseMerge(obj uintptr) {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.clockFor(gid)
	if l, ok := a.objects[obj]; ok {
		l.Join(c)
	} else {
		a.objects[obj] = c.Clone()
	}
	c.Increment(gid)
}

// Read records a read of the named variable by the calling goroutine and
// checks it against the last write.
func (a *Auditor) Read(name string) {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.clockFor(gid)
	cur := epoch{gid: gid, clock: c.Get(gid), stack: a.stacks.capture(1)}
	v := a.variable(name)
	a.check(name, WriteRead, cur, c, v.write)
	if v.reads == nil {
		v.reads = make(map[uint64]epoch)
	}
	v.reads[gid] = cur
}

// Write records a write of the named variable by the calling goroutine and
// checks it against the last write and every read since.
func (a *Auditor) Write(name string) {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.clockFor(gid)
	cur := epoch{gid: gid, clock: c.Get(gid), stack: a.stacks.capture(1)}
	v := a.variable(name)
	a.check(name, WriteWrite, cur, c, v.write)
	for _, read := range v.reads {
		a.check(name, ReadWrite, cur, c, read)
	}
	v.write = cur
	v.reads = nil
}

// variable returns the shadow state of name. The caller holds a.mu.
func (a *Auditor) variable(name string) *variable {
	v, ok := a.vars[name]
	if !ok {
		v = &variable{}
		a.vars[name] = v
	}
	return v
}

// check records a violation unless prev happened-before the access cur,
// made with clock c. Accesses by the same goroutine are ordered by program
// order. The caller holds a.mu.
func (a *Auditor) check(name, kind string, cur epoch, c VectorClock, prev epoch) {
	if prev.gid == 0 || prev.gid == cur.gid {
		return
	}
	observed := c.Get(prev.gid)
	if prev.clock <= observed {
		return
	}

	v := Violation{
		Var:           name,
		Kind:          kind,
		Current:       cur.gid,
		Previous:      prev.gid,
		PreviousClock: prev.clock,
		Observed:      observed,
		CurrentStack:  a.stacks.lookup(cur.stack).format(),
		PreviousStack: a.stacks.lookup(prev.stack).format(),
	}
	k := v.key()
	if _, dup := a.seen[k]; dup {
		return
	}
	a.seen[k] = struct{}{}
	a.violations = append(a.violations, v)
}

// Clock returns a copy of the calling goroutine's vector clock.
func (a *Auditor) Clock() VectorClock {
	gid := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.clockFor(gid).Clone()
}

// Violations returns the distinct violations found so far, in detection order.
func (a *Auditor) Violations() []Violation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Violation, len(a.violations))
	copy(out, a.violations)
	return out
}

// Err returns nil when no violation was found, and otherwise one error
// listing all of them.
func (a *Auditor) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var merr *multierror.Error
	for _, v := range a.violations {
		merr = multierror.Append(merr, v)
	}
	return merr.ErrorOrNil()
}

// Reset forgets all clocks, objects, variables and violations.
func (a *Auditor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reset()
}
