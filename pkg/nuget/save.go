// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"
)

var (
	// ErrDirectoryNotWritable is returned when the output directory cannot be
	// created or written to.
	ErrDirectoryNotWritable = errors.New("output directory not writable")
	// ErrDiskWrite is returned when writing the package file fails.
	ErrDiskWrite = errors.New("disk write failed")
)

// tempFile is the subset of *os.File used while writing a package.
type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

//nolint:gochecknoglobals // Test seam
var createTemp = func(dir, pattern string) (tempFile, error) {
	return os.CreateTemp(dir, pattern)
}

type (
	// SaveArgs are the inputs of Save.
	SaveArgs struct {
		// Path is the destination file.
		Path  string
		Nupkg Buf
	}

	// SaveResult describes a written package.
	SaveResult struct {
		Path string
		Size int64
		// Digest is the hex BLAKE3-256 of the written bytes.
		Digest string
	}
)

// Digest returns the hex BLAKE3-256 digest of b.
func Digest(b Buf) string {
	sum := blake3.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}

// Save writes the package to args.Path, replacing any existing file.
//
// The bytes go to a temporary file in the destination directory, which is
// synced and then renamed over the destination. A failed save therefore
// leaves the destination untouched: either the previous file or nothing.
// The directory is created when missing.
func Save(args SaveArgs) (*SaveResult, error) {
	if args.Path == "" {
		return nil, fmt.Errorf("%w: empty destination path", ErrDiskWrite)
	}
	dir := filepath.Dir(args.Path)

	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	tmp, err := createTemp(dir, "."+filepath.Base(args.Path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryNotWritable, dir, err)
	}

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := writeAndSync(tmp, args.Nupkg.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDiskWrite, args.Path, err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDiskWrite, args.Path, err)
	}

	if err := os.Rename(tmp.Name(), args.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDiskWrite, args.Path, err)
	}
	renamed = true

	return &SaveResult{
		Path:   args.Path,
		Size:   int64(args.Nupkg.Len()),
		Digest: Digest(args.Nupkg),
	}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotWritable, dir)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("%w: %w", ErrDirectoryNotWritable, mkErr)
		}
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrDirectoryNotWritable, err)
	}
}

func writeAndSync(f tempFile, data []byte) (err error) {
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
