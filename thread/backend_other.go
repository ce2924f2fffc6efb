//go:build !linux

package thread

import (
	"errors"
	"fmt"
)

type portableBackend struct{}

var platform Backend = portableBackend{}

// SetName implements Backend. Names are kept only in log records.
func (portableBackend) SetName(string) error {
	return fmt.Errorf("thread names: %w", errors.ErrUnsupported)
}

// SetPriority implements Backend. Only Normal is supported.
func (portableBackend) SetPriority(p Priority) error {
	if p == Normal {
		return nil
	}
	return fmt.Errorf("priority %s: %w", p, errors.ErrUnsupported)
}

// CurrentHandle implements Backend.
func (portableBackend) CurrentHandle() (Handle, bool) {
	return 0, false
}
