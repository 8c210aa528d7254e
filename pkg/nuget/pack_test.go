// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var pinnedTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func writeLib(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testNuspec(t *testing.T) *Nuspec {
	t.Helper()
	spec, err := Spec(SpecArgs{ID: "foo", Version: "1.2.3", Authors: "A B", Description: "d"})
	if err != nil {
		t.Fatalf("Spec() error = %v", err)
	}
	return spec
}

func TestPack_Completeness(t *testing.T) {
	t.Parallel()

	libContent := []byte("\x7fELF native library bytes \x00\x01\x02")
	libPath := writeLib(t, "libfoo.so", libContent)
	spec := testNuspec(t)
	target := Target{OS: "linux", Arch: "x64"}

	pkg, err := Pack(PackArgs{
		ID:      spec.ID,
		Version: spec.Version,
		Spec:    spec.XML,
		Libs:    map[Target]string{target: libPath},
	}, WithModTime(pinnedTime))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	if pkg.Name != "foo-1.2.3.nupkg" {
		t.Errorf("Name = %q, want %q", pkg.Name, "foo-1.2.3.nupkg")
	}

	contents, err := ReadNupkg(pkg.Buf)
	if err != nil {
		t.Fatalf("ReadNupkg() error = %v", err)
	}

	if len(contents.Entries) != 2 {
		t.Fatalf("archive has %d entries, want 2 (one nuspec, one library)", len(contents.Entries))
	}
	if !contents.Nuspec.Equal(spec) {
		t.Errorf("embedded nuspec = %+v, want %+v", contents.Nuspec, spec)
	}

	lib, ok := contents.Entry("runtimes/linux-x64/native/libfoo.so")
	if !ok {
		t.Fatalf("library entry missing; entries = %v", contents.Entries)
	}
	if !bytes.Equal(lib.Data.Bytes(), libContent) {
		t.Error("library entry content differs from the source file")
	}

	nuspecEntry, ok := contents.Entry("foo.nuspec")
	if !ok {
		t.Fatal("foo.nuspec entry missing")
	}
	if !nuspecEntry.Data.Equal(spec.XML) {
		t.Error("nuspec entry differs from the serialized nuspec")
	}
}

func TestPack_DeterministicWithPinnedTime(t *testing.T) {
	t.Parallel()

	libPath := writeLib(t, "foo.dll", []byte("MZ library"))
	spec := testNuspec(t)
	args := PackArgs{
		ID:      spec.ID,
		Version: spec.Version,
		Spec:    spec.XML,
		Libs: map[Target]string{
			{OS: "win", Arch: "x64"}:   libPath,
			{OS: "win", Arch: "arm64"}: libPath,
			{OS: "linux", Arch: "x64"}: libPath,
		},
	}

	first, err := Pack(args, WithModTime(pinnedTime))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	second, err := Pack(args, WithModTime(pinnedTime))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if !first.Buf.Equal(second.Buf) {
		t.Error("two packs of the same input with a pinned time differ")
	}

	contents, err := ReadNupkg(first.Buf)
	if err != nil {
		t.Fatalf("ReadNupkg() error = %v", err)
	}
	want := []string{
		"foo.nuspec",
		"runtimes/linux-x64/native/foo.dll",
		"runtimes/win-arm64/native/foo.dll",
		"runtimes/win-x64/native/foo.dll",
	}
	if len(contents.Entries) != len(want) {
		t.Fatalf("archive has %d entries, want %d", len(contents.Entries), len(want))
	}
	for i, name := range want {
		if contents.Entries[i].Name != name {
			t.Errorf("entry %d = %q, want %q", i, contents.Entries[i].Name, name)
		}
	}
}

func TestPack_ArtifactUnreadable(t *testing.T) {
	t.Parallel()

	spec := testNuspec(t)
	target := Target{OS: "linux", Arch: "x64"}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "libgone.so")},
		{name: "directory", path: t.TempDir()},
		{name: "empty path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg, err := Pack(PackArgs{
				ID:      spec.ID,
				Version: spec.Version,
				Spec:    spec.XML,
				Libs:    map[Target]string{target: tt.path},
			})
			if pkg != nil {
				t.Error("Pack() returned a package alongside an error")
			}
			if !errors.Is(err, ErrBuildArtifactUnreadable) {
				t.Fatalf("Pack() error = %v, want ErrBuildArtifactUnreadable", err)
			}
			var artErr *ArtifactUnreadableError
			if !errors.As(err, &artErr) {
				t.Fatalf("error should be *ArtifactUnreadableError, got %T", err)
			}
			if artErr.Target != target || artErr.Path != tt.path {
				t.Errorf("ArtifactUnreadableError = %+v", artErr)
			}
		})
	}
}

func TestPack_RequiresIDAndVersion(t *testing.T) {
	t.Parallel()

	_, err := Pack(PackArgs{Version: "1.2.3"})
	if !errors.Is(err, ErrArchiveWrite) {
		t.Errorf("Pack() error = %v, want ErrArchiveWrite", err)
	}
}

func TestPack_RejectsCollidingEntries(t *testing.T) {
	t.Parallel()

	spec := testNuspec(t)
	lib := writeLib(t, "libfoo.so", []byte("x"))

	// Targets with the same RID but different field splits.
	_, err := Pack(PackArgs{
		ID:      spec.ID,
		Version: spec.Version,
		Spec:    spec.XML,
		Libs: map[Target]string{
			{OS: "linux-musl", Arch: "x64"}: lib,
			{OS: "linux", Arch: "musl-x64"}: lib,
		},
	})
	if !errors.Is(err, ErrArchiveWrite) {
		t.Errorf("Pack() error = %v, want ErrArchiveWrite", err)
	}
}

func TestReadNupkg_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ReadNupkg(NewBuf([]byte("not a zip"))); !errors.Is(err, ErrInvalidNupkg) {
		t.Errorf("ReadNupkg(garbage) error = %v, want ErrInvalidNupkg", err)
	}

	lib := writeLib(t, "libfoo.so", []byte("x"))
	pkg, err := Pack(PackArgs{
		ID:      "foo",
		Version: "1.2.3",
		Spec:    NewBuf([]byte("<not-a-nuspec/>")),
		Libs:    map[Target]string{{OS: "linux", Arch: "x64"}: lib},
	})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if _, err := ReadNupkg(pkg.Buf); !errors.Is(err, ErrNuspecParse) || !errors.Is(err, ErrInvalidNupkg) {
		t.Errorf("ReadNupkg(bad nuspec) error = %v, want ErrInvalidNupkg and ErrNuspecParse", err)
	}
}

func TestTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "linux-x64"},
		{"windows", "amd64", "win-x64"},
		{"windows", "386", "win-x86"},
		{"darwin", "arm64", "osx-arm64"},
		{"plan9", "mips", "plan9-mips"},
	}

	for _, tt := range tests {
		got := TargetFor(tt.goos, tt.goarch)
		if got.RID() != tt.want {
			t.Errorf("TargetFor(%q, %q).RID() = %q, want %q", tt.goos, tt.goarch, got.RID(), tt.want)
		}
	}

	if got := (Target{OS: "win", Arch: "x64"}).EntryPath("foo.dll"); got != "runtimes/win-x64/native/foo.dll" {
		t.Errorf("EntryPath() = %q", got)
	}
}
