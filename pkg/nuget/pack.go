// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zip"
)

// Extension is the file extension of a NuGet package, without the dot.
const Extension = "nupkg"

var (
	// ErrBuildArtifactUnreadable is the sentinel error wrapped by ArtifactUnreadableError.
	ErrBuildArtifactUnreadable = errors.New("build artifact unreadable")
	// ErrArchiveWrite is returned when the zip stream cannot be produced.
	ErrArchiveWrite = errors.New("archive write failed")
)

type (
	// PackArgs are the inputs of Pack.
	PackArgs struct {
		ID      string
		Version string
		// Spec is the serialized nuspec document.
		Spec Buf
		// Libs maps each target to the native library built for it.
		Libs map[Target]string
	}

	// Nupkg is a packed archive held in memory.
	Nupkg struct {
		// Name is the archive file name, "<id>-<version>.nupkg".
		Name string
		Buf  Buf
	}

	// PackOption configures Pack.
	PackOption func(*packOptions)

	// ArtifactUnreadableError reports a native library that could not be read
	// at pack time.
	ArtifactUnreadableError struct {
		Target Target
		Path   string
		Err    error
	}

	packOptions struct {
		modTime time.Time
	}

	packEntry struct {
		name string
		mode os.FileMode
		data []byte
	}
)

// Error implements the error interface.
func (e *ArtifactUnreadableError) Error() string {
	return fmt.Sprintf("cannot read %s library %s: %v", e.Target, e.Path, e.Err)
}

// Unwrap returns both ErrBuildArtifactUnreadable and the I/O error.
func (e *ArtifactUnreadableError) Unwrap() []error {
	return []error{ErrBuildArtifactUnreadable, e.Err}
}

// WithModTime pins the modification time recorded for every entry.
// Two packs of the same input with the same time are byte-identical.
func WithModTime(t time.Time) PackOption {
	return func(o *packOptions) {
		o.modTime = t
	}
}

// NupkgName returns the archive file name for a package id and version.
func NupkgName(id, version string) string {
	return id + "-" + version + "." + Extension
}

// Pack builds the nupkg archive in memory.
//
// The nuspec is stored at the archive root as "<id>.nuspec" and each library
// under "runtimes/<rid>/native/". Libraries are read completely before the
// archive is started, so an unreadable artifact never yields a partial buffer.
// Pack does not touch the filesystem beyond reading the libraries.
func Pack(args PackArgs, opts ...PackOption) (*Nupkg, error) {
	o := packOptions{modTime: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}

	if args.ID == "" || args.Version == "" {
		return nil, fmt.Errorf("%w: package id and version are required", ErrArchiveWrite)
	}

	entries, err := collectEntries(args)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: o.modTime.UTC(),
		}
		header.SetMode(e.mode)

		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%w: create entry %s: %w", ErrArchiveWrite, e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("%w: write entry %s: %w", ErrArchiveWrite, e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize archive: %w", ErrArchiveWrite, err)
	}

	return &Nupkg{
		Name: NupkgName(args.ID, args.Version),
		Buf:  NewBuf(buf.Bytes()),
	}, nil
}

func collectEntries(args PackArgs) ([]packEntry, error) {
	entries := []packEntry{{
		name: args.ID + ".nuspec",
		mode: 0o644,
		data: args.Spec.Bytes(),
	}}

	seen := map[string]Target{}
	for _, target := range slices.SortedFunc(maps.Keys(args.Libs), compareTargets) {
		libPath := args.Libs[target]

		data, err := readArtifact(libPath)
		if err != nil {
			return nil, &ArtifactUnreadableError{Target: target, Path: libPath, Err: err}
		}

		name := target.EntryPath(filepath.Base(libPath))
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: targets %s and %s both map to %s", ErrArchiveWrite, prev, target, name)
		}
		seen[name] = target

		entries = append(entries, packEntry{name: name, mode: 0o755, data: data})
	}

	return entries, nil
}

func readArtifact(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return os.ReadFile(path)
}
