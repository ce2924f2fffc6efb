package thread

// Handle is the platform identifier of a running OS thread: the kernel
// thread id on Linux.
type Handle uint64

// Backend applies platform attributes to the calling OS thread.
//
// Every method is called on the spawned thread itself, after it has been
// locked to its goroutine and before the body runs.
type Backend interface {
	// SetName sets the kernel-visible name of the calling thread.
	SetName(name string) error
	// SetPriority applies p to the calling thread. Normal must be a no-op.
	SetPriority(p Priority) error
	// CurrentHandle returns the identifier of the calling thread, or false
	// if the platform has none.
	CurrentHandle() (Handle, bool)
}

// maxNameLen is the longest thread name Linux keeps, excluding the NUL.
const maxNameLen = 15

// truncateName cuts name to what the kernel stores.
func truncateName(name string) string {
	if len(name) > maxNameLen {
		return name[:maxNameLen]
	}
	return name
}

// CurrentHandle returns the platform identifier of the calling OS thread, or
// false if the platform has none.
//
// The identifier is only stable while the calling goroutine is locked to its
// thread with runtime.LockOSThread, as every Thread body is.
func CurrentHandle() (Handle, bool) {
	return platform.CurrentHandle()
}

// SetCurrentName sets the kernel-visible name of the calling OS thread,
// truncated to 15 bytes on Linux.
//
// Call it only from a goroutine locked to its thread; otherwise the name
// sticks to whichever thread the goroutine happens to run on. It returns an
// error wrapping errors.ErrUnsupported where the platform cannot name
// threads.
//
// Example:
//
//	runtime.LockOSThread()
//	if err := thread.SetCurrentName("io-poller"); err != nil {
//		log.Debug("thread name not applied", "err", err)
//	}
func SetCurrentName(name string) error {
	return platform.SetName(name)
}
