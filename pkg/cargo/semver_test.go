// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"testing"
)

func TestSemVer_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version SemVer
		want    bool
	}{
		{"1.2.3", true},
		{"0.0.0", true},
		{"1.2.3-alpha", true},
		{"1.2.3-alpha.1", true},
		{"1.2.3+build.5", true},
		{"1.2.3-rc.1+sha.abc123", true},
		{"", false},
		{"1", false},
		{"1.2", false},
		{"1.2.3.4", false},
		{"v1.2.3", false},
		{"01.2.3", false},
		{" 1.2.3", false},
		{"1.2.3-", false},
		{"one.two.three", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.version), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.version.IsValid()
			if ok != tt.want {
				t.Errorf("SemVer(%q).IsValid() = %v, want %v", tt.version, ok, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 {
					t.Fatalf("SemVer(%q).IsValid() returned no errors", tt.version)
				}
				if !errors.Is(errs[0], ErrInvalidSemVer) {
					t.Errorf("error should wrap ErrInvalidSemVer, got %v", errs[0])
				}
				var semErr *InvalidSemVerError
				if !errors.As(errs[0], &semErr) {
					t.Errorf("error should be *InvalidSemVerError, got %T", errs[0])
				}
			}
		})
	}
}

func TestBuildTarget(t *testing.T) {
	t.Parallel()

	if ok, _ := BuildTargetLocal.IsValid(); !ok {
		t.Error("BuildTargetLocal should be valid")
	}
	if BuildTargetLocal.String() != "local" {
		t.Errorf("BuildTargetLocal.String() = %q, want %q", BuildTargetLocal.String(), "local")
	}

	var zero BuildTarget
	ok, errs := zero.IsValid()
	if ok {
		t.Fatal("zero BuildTarget should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidBuildTarget) {
		t.Errorf("error should wrap ErrInvalidBuildTarget, got %v", errs[0])
	}
}
