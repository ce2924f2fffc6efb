// Package version holds the release metadata of threadsync.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the current release, in semantic version form.
const Version = "v0.1.0"

// Info describes the running build.
type Info struct {
	// Version is the release string.
	Version string

	// Major, Minor and Patch are the numeric components of Version.
	Major, Minor, Patch int

	// GoVersion is the toolchain the binary was built with.
	GoVersion string

	// Platform is GOOS/GOARCH.
	Platform string
}

// GetInfo returns information about the running build.
//
// Example:
//
//	info := version.GetInfo()
//	fmt.Printf("syncstress %s (%s)\n", info.Version, info.Platform)
func GetInfo() Info {
	info, err := Parse(Version)
	if err != nil {
		panic(err)
	}
	return info
}

// Parse validates v and splits it into its numeric components.
func Parse(v string) (Info, error) {
	if !semver.IsValid(v) {
		return Info{}, fmt.Errorf("invalid semantic version %q", v)
	}

	info := Info{
		Version:   semver.Canonical(v),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	core := strings.TrimPrefix(info.Version, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.SplitN(core, ".", 3)
	nums := []*int{&info.Major, &info.Minor, &info.Patch}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Info{}, fmt.Errorf("version %q: %w", v, err)
		}
		*nums[i] = n
	}
	return info, nil
}

// String returns "<version> <go version> <platform>".
func (i Info) String() string {
	return fmt.Sprintf("%s %s %s", i.Version, i.GoVersion, i.Platform)
}

// Compare compares two versions like semver.Compare.
func Compare(v, w string) int {
	return semver.Compare(v, w)
}
