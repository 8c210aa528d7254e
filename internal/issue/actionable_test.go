// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "building nupkg"},
			expected: "building nupkg",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "saving nupkg", Resource: "dist"},
			expected: "saving nupkg: dist",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "building nuspec",
				Cause:     errors.New("cannot serialize description"),
			},
			expected: "building nuspec: cannot serialize description",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "saving nupkg",
				Resource:  "dist",
				Cause:     errors.New("disk write failed"),
			},
			expected: "saving nupkg: dist: disk write failed",
		},
		{
			name: "resource already named by the cause",
			err: &ActionableError{
				Operation: "reading cargo manifest",
				Resource:  "/src/foo/Cargo.toml",
				Cause:     errors.New("/src/foo/Cargo.toml: missing required field package.version"),
			},
			expected: "reading cargo manifest: /src/foo/Cargo.toml: missing required field package.version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	errNoCause := &ActionableError{Operation: "test"}
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

type multiErr struct{ errs []error }

func (m *multiErr) Error() string   { return "multi" }
func (m *multiErr) Unwrap() []error { return m.errs }

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("cargo manifest not found")

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "reading cargo manifest",
				Resource:    "Cargo.toml",
				Suggestions: []string{"Run from the crate root", "Use --manifest-path"},
			},
			contains: []string{
				"reading cargo manifest: Cargo.toml",
				"• Run from the crate root",
				"• Use --manifest-path",
			},
		},
		{
			name: "no chain when not verbose",
			err: &ActionableError{
				Operation: "building nupkg",
				Cause:     errors.New("archive write failed"),
			},
			contains: []string{"building nupkg: archive write failed"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "wrapped chain when verbose",
			err: &ActionableError{
				Operation: "reading cargo manifest",
				Cause:     fmt.Errorf("%w: /x/Cargo.toml", sentinel),
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. cargo manifest not found: /x/Cargo.toml",
				"2. cargo manifest not found",
			},
		},
		{
			name: "multi-cause chain when verbose",
			err: &ActionableError{
				Operation: "building Rust lib",
				Cause:     &multiErr{errs: []error{errors.New("cargo build failed"), errors.New("exit status 101")}},
			},
			verbose: true,
			contains: []string{
				"1. multi",
				"2. cargo build failed",
				"3. exit status 101",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestActionableError_HasSuggestions(t *testing.T) {
	t.Parallel()

	if !(&ActionableError{Operation: "x", Suggestions: []string{"Try this"}}).HasSuggestions() {
		t.Error("HasSuggestions() should return true when suggestions present")
	}
	if (&ActionableError{Operation: "x"}).HasSuggestions() {
		t.Error("HasSuggestions() should return false when no suggestions")
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk write failed")
	err := NewErrorContext().
		WithOperation("saving nupkg").
		WithResource("dist/foo-1.2.3.nupkg").
		WithSuggestion("Free some disk space").
		WithSuggestions("Check permissions", "Pick another directory").
		WithIssue(DiskWriteFailedId).
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "saving nupkg" || err.Resource != "dist/foo-1.2.3.nupkg" {
		t.Errorf("Build() = %+v", err)
	}
	if len(err.Suggestions) != 3 {
		t.Errorf("Suggestions count = %d, want 3", len(err.Suggestions))
	}
	if err.Issue != DiskWriteFailedId {
		t.Errorf("Issue = %d, want %d", err.Issue, DiskWriteFailedId)
	}
	if !errors.Is(err, cause) {
		t.Error("Build() lost the cause")
	}

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
}

func TestErrorContext_BuildError(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().WithOperation("test").BuildError()
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}

	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() should return nil when operation missing")
	}
}
