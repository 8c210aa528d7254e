// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// maxEntryBytes bounds the uncompressed size of a single entry (512 MiB).
const maxEntryBytes = 512 << 20

// ErrInvalidNupkg is returned when a buffer is not a readable nupkg.
var ErrInvalidNupkg = errors.New("invalid nupkg")

type (
	// Entry is one file stored in a nupkg.
	Entry struct {
		Name string
		Data Buf
	}

	// Contents is the decoded view of a nupkg.
	Contents struct {
		Nuspec  *Nuspec
		Entries []Entry
	}
)

// ReadNupkg decodes a packed archive. Entries are returned in archive order.
// Exactly one .nuspec must be present at the archive root.
func ReadNupkg(buf Buf) (*Contents, error) {
	data := buf.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNupkg, err)
	}

	c := &Contents{Entries: make([]Entry, 0, len(zr.File))}
	for _, f := range zr.File {
		name, err := cleanEntryName(f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 > maxEntryBytes {
			return nil, fmt.Errorf("%w: entry %s exceeds %d bytes", ErrInvalidNupkg, name, maxEntryBytes)
		}

		body, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNupkg, err)
		}
		c.Entries = append(c.Entries, Entry{Name: name, Data: NewBuf(body)})

		if !strings.Contains(name, "/") && strings.HasSuffix(name, ".nuspec") {
			if c.Nuspec != nil {
				return nil, fmt.Errorf("%w: more than one nuspec at the archive root", ErrInvalidNupkg)
			}
			if c.Nuspec, err = ParseNuspec(body); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidNupkg, name, err)
			}
		}
	}

	if c.Nuspec == nil {
		return nil, fmt.Errorf("%w: no nuspec at the archive root", ErrInvalidNupkg)
	}
	return c, nil
}

// Entry returns the entry with the given name.
func (c *Contents) Entry(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(body) > maxEntryBytes {
		return nil, fmt.Errorf("entry %s exceeds %d bytes", f.Name, maxEntryBytes)
	}
	return body, nil
}

func cleanEntryName(name string) (string, error) {
	raw := strings.ReplaceAll(name, "\\", "/")
	if raw == "" || strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("%w: bad entry name %q", ErrInvalidNupkg, name)
	}
	cleaned := path.Clean(raw)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: entry %q escapes the archive root", ErrInvalidNupkg, name)
	}
	if strings.HasSuffix(raw, "/") {
		cleaned += "/"
	}
	return cleaned, nil
}
