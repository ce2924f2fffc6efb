package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/threadsync/internal/version"
)

func TestGetInfo(t *testing.T) {
	t.Parallel()

	info := version.GetInfo()
	assert.Equal(t, version.Version, info.Version)
	assert.Equal(t, 0, info.Major)
	assert.Equal(t, 1, info.Minor)
	assert.Equal(t, 0, info.Patch)
	assert.Regexp(t, `^v\d+\.\d+\.\d+ go`, info.String())
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in                  string
		want                string
		major, minor, patch int
		wantErr             bool
	}{
		{in: "v1.2.3", want: "v1.2.3", major: 1, minor: 2, patch: 3},
		{in: "v1.2", want: "v1.2.0", major: 1, minor: 2},
		{in: "v2", want: "v2.0.0", major: 2},
		{in: "v1.0.0-rc.1", want: "v1.0.0-rc.1", major: 1},
		{in: "1.2.3", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			info, err := version.Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Version)
			assert.Equal(t, []int{tt.major, tt.minor, tt.patch}, []int{info.Major, info.Minor, info.Patch})
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, version.Compare("v0.1.0", "v0.2.0"))
	assert.Equal(t, 0, version.Compare(version.Version, "v0.1.0"))
	assert.Equal(t, 1, version.Compare("v1.0.0", "v1.0.0-rc.1"))
}
