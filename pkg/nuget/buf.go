// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Buf is an owned byte buffer whose diagnostic renderings omit its contents.
// Package archives can be megabytes of binary data; printing a Buf with any
// fmt verb or structured logger yields only its length.
type Buf struct {
	b []byte
}

// NewBuf wraps b. The caller must not modify b afterwards.
func NewBuf(b []byte) Buf {
	return Buf{b: b}
}

// Bytes returns the underlying bytes. The caller must not modify them.
func (b Buf) Bytes() []byte { return b.b }

// Len returns the number of bytes in the buffer.
func (b Buf) Len() int { return len(b.b) }

// Equal reports whether both buffers hold the same bytes.
func (b Buf) Equal(other Buf) bool { return bytes.Equal(b.b, other.b) }

// String implements fmt.Stringer without exposing the contents.
func (b Buf) String() string { return fmt.Sprintf("Buf(%d bytes)", len(b.b)) }

// GoString implements fmt.GoStringer without exposing the contents.
func (b Buf) GoString() string { return fmt.Sprintf("nuget.Buf{len: %d}", len(b.b)) }

// Format implements fmt.Formatter so that every verb, including %x and %q,
// renders the redacted form.
func (b Buf) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = fmt.Fprint(f, b.GoString())
		return
	}
	_, _ = fmt.Fprint(f, b.String())
}

// LogValue implements slog.LogValuer.
func (b Buf) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("len", len(b.b)))
}

// MarshalText implements encoding.TextMarshaler with the redacted form, so
// text and JSON log formatters cannot dump the contents either.
func (b Buf) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
