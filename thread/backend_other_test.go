//go:build !linux

package thread

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPortable_CurrentThread verifies the portable backend reports missing
// capabilities instead of failing silently.
func TestPortable_CurrentThread(t *testing.T) {
	_, ok := CurrentHandle()
	assert.False(t, ok)
	assert.True(t, errors.Is(SetCurrentName("any"), errors.ErrUnsupported))
	assert.NoError(t, platform.SetPriority(Normal))
	assert.ErrorIs(t, platform.SetPriority(High), errors.ErrUnsupported)
}
