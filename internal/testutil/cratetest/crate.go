// SPDX-License-Identifier: MPL-2.0

package cratetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Crate is an in-memory Cargo.toml.
	Crate struct {
		pkg map[string]any
		lib map[string]any
	}

	// Option configures a Crate.
	Option func(*Crate)
)

// New creates the default crate with opts applied.
func New(opts ...Option) *Crate {
	c := &Crate{
		pkg: map[string]any{
			"name":        "foo",
			"version":     "1.2.3",
			"authors":     []string{"A B"},
			"description": "d",
		},
		lib: map[string]any{
			"crate-type": []string{"cdylib"},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithName sets package.name.
func WithName(name string) Option {
	return func(c *Crate) { c.pkg["name"] = name }
}

// WithVersion sets package.version.
func WithVersion(version string) Option {
	return func(c *Crate) { c.pkg["version"] = version }
}

// WithAuthors sets package.authors.
func WithAuthors(authors ...string) Option {
	return func(c *Crate) { c.pkg["authors"] = authors }
}

// WithDescription sets package.description.
func WithDescription(desc string) Option {
	return func(c *Crate) { c.pkg["description"] = desc }
}

// WithLibName sets lib.name.
func WithLibName(name string) Option {
	return func(c *Crate) { c.lib["name"] = name }
}

// WithCrateTypes sets lib.crate-type.
func WithCrateTypes(types ...string) Option {
	return func(c *Crate) { c.lib["crate-type"] = types }
}

// Without removes a package key (e.g., "version").
func Without(key string) Option {
	return func(c *Crate) { delete(c.pkg, key) }
}

// Marshal renders the crate as TOML.
func (c *Crate) Marshal() ([]byte, error) {
	return toml.Marshal(map[string]any{
		"package": c.pkg,
		"lib":     c.lib,
	})
}

// Write renders the crate into dir/Cargo.toml and returns the file path.
// The test fails immediately if rendering or writing fails.
func Write(t testing.TB, dir string, opts ...Option) string {
	t.Helper()

	data, err := New(opts...).Marshal()
	if err != nil {
		t.Fatalf("failed to render Cargo.toml: %v", err)
	}

	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
