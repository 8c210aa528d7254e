// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"path"
	"runtime"
	"strings"
)

// Target is a NuGet runtime identifier split into its platform and
// architecture parts (e.g., {OS: "linux", Arch: "x64"} for "linux-x64").
type Target struct {
	OS   string
	Arch string
}

var (
	ridOS = map[string]string{
		"windows": "win",
		"darwin":  "osx",
		"linux":   "linux",
		"freebsd": "freebsd",
		"android": "android",
		"ios":     "ios",
	}

	ridArch = map[string]string{
		"amd64":   "x64",
		"386":     "x86",
		"arm64":   "arm64",
		"arm":     "arm",
		"s390x":   "s390x",
		"ppc64le": "ppc64le",
		"loong64": "loongarch64",
	}
)

// LocalTarget returns the runtime identifier of the host.
func LocalTarget() Target {
	return TargetFor(runtime.GOOS, runtime.GOARCH)
}

// TargetFor maps a GOOS/GOARCH pair to a NuGet runtime identifier.
// Unknown values pass through unchanged.
func TargetFor(goos, goarch string) Target {
	t := Target{OS: goos, Arch: goarch}
	if rid, ok := ridOS[goos]; ok {
		t.OS = rid
	}
	if rid, ok := ridArch[goarch]; ok {
		t.Arch = rid
	}
	return t
}

// RID returns the runtime identifier string (e.g., "win-x64").
func (t Target) RID() string { return t.OS + "-" + t.Arch }

// String returns the runtime identifier.
func (t Target) String() string { return t.RID() }

// EntryPath returns the archive path of a native library built for t.
// Distinct targets never share a directory, so entries cannot collide.
func (t Target) EntryPath(libFileName string) string {
	return path.Join("runtimes", t.RID(), "native", libFileName)
}

// compareTargets orders targets by runtime identifier.
func compareTargets(a, b Target) int {
	return strings.Compare(a.RID(), b.RID())
}
