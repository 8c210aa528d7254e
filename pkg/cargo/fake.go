// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// FakeBuilder is intended for tests and local dry-runs.
// It writes Contents to a library file under Dir and reports it as the
// local build output, or returns Err without touching the filesystem.
type FakeBuilder struct {
	mu sync.Mutex

	Calls []*Config

	Dir      string
	Contents []byte
	Err      error
}

// Build implements Builder.
func (b *FakeBuilder) Build(ctx context.Context, cfg *Config) (*BuildOutput, error) {
	b.mu.Lock()
	b.Calls = append(b.Calls, cfg)
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.Err != nil {
		return nil, b.Err
	}

	dir := b.Dir
	if dir == "" {
		dir = filepath.Join(cfg.Dir(), "target", "debug")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	libPath := filepath.Join(dir, DynamicLibFileName(cfg.LibName, "linux"))
	if err := os.WriteFile(libPath, b.Contents, 0o644); err != nil {
		return nil, err
	}

	return &BuildOutput{Target: BuildTargetLocal, Path: libPath}, nil
}

// CallCount returns how many times Build was invoked.
func (b *FakeBuilder) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Calls)
}
