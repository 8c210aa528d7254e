// SPDX-License-Identifier: MPL-2.0

package nuget

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// NuspecNamespace is the XML namespace of the nuspec schema.
const NuspecNamespace = "http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd"

// DependencyFramework is the target framework of the dependency group written
// into generated documents.
const DependencyFramework = ".NETStandard2.0"

// MaxIDLength is the longest package id NuGet accepts.
const MaxIDLength = 100

const xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

var (
	// ErrSerialization is the sentinel error wrapped by SerializationError.
	ErrSerialization = errors.New("nuspec serialization failed")
	// ErrNuspecParse is returned when a nuspec document cannot be parsed.
	ErrNuspecParse = errors.New("malformed nuspec")
)

type (
	// Dependencies maps a NuGet package id to a version range.
	// A nil map is the same as an empty one.
	Dependencies map[string]string

	// SpecArgs are the inputs of Spec.
	SpecArgs struct {
		ID           string
		Version      string
		Authors      string
		Description  string
		Dependencies Dependencies
	}

	// Nuspec is the package manifest embedded in a nupkg, in both structured
	// and serialized form. XML always parses back to the structured fields.
	Nuspec struct {
		ID           string
		Version      string
		Authors      string
		Description  string
		Dependencies Dependencies
		XML          Buf
	}

	// SerializationError reports a field whose content cannot be represented
	// in an XML 1.0 document.
	SerializationError struct {
		Field  string
		Reason string
	}

	nuspecPackage struct {
		XMLName  xml.Name       `xml:"http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd package"`
		Metadata nuspecMetadata `xml:"metadata"`
	}

	// nuspecDocument is the parse form of nuspecPackage. It matches <package>
	// in any namespace, since older nuspec schemas use other namespace URIs.
	nuspecDocument struct {
		XMLName  xml.Name       `xml:"package"`
		Metadata nuspecMetadata `xml:"metadata"`
	}

	nuspecMetadata struct {
		ID                       string             `xml:"id"`
		Version                  string             `xml:"version"`
		Authors                  string             `xml:"authors"`
		Description              string             `xml:"description"`
		RequireLicenseAcceptance bool               `xml:"requireLicenseAcceptance"`
		Dependencies             nuspecDependencies `xml:"dependencies"`
	}

	nuspecDependencies struct {
		// Flat dependency lists are accepted when parsing but never written.
		Dependencies []nuspecDependency `xml:"dependency"`
		Groups       []nuspecGroup      `xml:"group"`
	}

	nuspecGroup struct {
		TargetFramework string             `xml:"targetFramework,attr,omitempty"`
		Dependencies    []nuspecDependency `xml:"dependency"`
	}

	nuspecDependency struct {
		ID      string `xml:"id,attr"`
		Version string `xml:"version,attr"`
	}
)

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrSerialization for errors.Is() compatibility.
func (e *SerializationError) Unwrap() error { return ErrSerialization }

// Spec builds the nuspec document for args. It performs no I/O.
//
// Reserved markup characters are escaped. Content that XML 1.0 cannot carry
// at all (most C0 control characters, U+FFFE, U+FFFF, invalid UTF-8) is
// rejected with a *SerializationError instead of being silently replaced.
func Spec(args SpecArgs) (*Nuspec, error) {
	if err := validateSpecArgs(args); err != nil {
		return nil, err
	}

	doc := nuspecPackage{
		Metadata: nuspecMetadata{
			ID:          args.ID,
			Version:     args.Version,
			Authors:     args.Authors,
			Description: args.Description,
		},
	}
	group := nuspecGroup{TargetFramework: DependencyFramework}
	for _, id := range slices.Sorted(maps.Keys(args.Dependencies)) {
		group.Dependencies = append(group.Dependencies, nuspecDependency{ID: id, Version: args.Dependencies[id]})
	}
	doc.Metadata.Dependencies.Groups = []nuspecGroup{group}

	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	buf.WriteByte('\n')

	return &Nuspec{
		ID:           args.ID,
		Version:      args.Version,
		Authors:      args.Authors,
		Description:  args.Description,
		Dependencies: maps.Clone(args.Dependencies),
		XML:          NewBuf(buf.Bytes()),
	}, nil
}

// ParseNuspec parses a serialized nuspec document in any nuspec schema
// namespace. Dependencies declared in framework groups are merged into a
// single set.
func ParseNuspec(data []byte) (*Nuspec, error) {
	var doc nuspecDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNuspecParse, err)
	}

	md := doc.Metadata
	n := &Nuspec{
		ID:          md.ID,
		Version:     md.Version,
		Authors:     md.Authors,
		Description: md.Description,
		XML:         NewBuf(data),
	}

	all := slices.Clone(md.Dependencies.Dependencies)
	for _, g := range md.Dependencies.Groups {
		all = append(all, g.Dependencies...)
	}
	if len(all) > 0 {
		n.Dependencies = make(Dependencies, len(all))
		for _, d := range all {
			n.Dependencies[d.ID] = d.Version
		}
	}

	return n, nil
}

// FileName returns the conventional archive entry name of the nuspec.
func (n *Nuspec) FileName() string {
	return n.ID + ".nuspec"
}

// Equal reports whether two documents describe the same package metadata.
// The serialized form is not compared.
func (n *Nuspec) Equal(other *Nuspec) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.ID == other.ID &&
		n.Version == other.Version &&
		n.Authors == other.Authors &&
		n.Description == other.Description &&
		maps.Equal(n.Dependencies, other.Dependencies)
}

func validateSpecArgs(args SpecArgs) error {
	if strings.TrimSpace(args.ID) == "" {
		return &SerializationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(args.Version) == "" {
		return &SerializationError{Field: "version", Reason: "must not be empty"}
	}
	if !IsValidID(args.ID) {
		return &SerializationError{
			Field:  "id",
			Reason: fmt.Sprintf("%q is not a valid package id (letters, digits and '_' separated by '.' or '-', at most %d characters)", args.ID, MaxIDLength),
		}
	}

	fields := []struct{ name, value string }{
		{"id", args.ID},
		{"version", args.Version},
		{"authors", args.Authors},
		{"description", args.Description},
	}
	for id, version := range args.Dependencies {
		fields = append(fields,
			struct{ name, value string }{"dependency id", id},
			struct{ name, value string }{"dependency " + id + " version", version})
	}

	for _, f := range fields {
		if err := checkXMLText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// IsValidID reports whether id is a valid NuGet package id: runs of ASCII
// letters, digits and '_' separated by single '.' or '-'.
func IsValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength {
		return false
	}
	prevSep := true
	for i := range len(id) {
		switch c := id[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			prevSep = false
		case c == '.' || c == '-':
			if prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return !prevSep
}

func checkXMLText(field, s string) error {
	if !utf8.ValidString(s) {
		return &SerializationError{Field: field, Reason: "invalid UTF-8"}
	}
	for i, r := range s {
		if !isXMLChar(r) {
			return &SerializationError{
				Field:  field,
				Reason: fmt.Sprintf("character %U at byte %d is not allowed in XML", r, i),
			}
		}
	}
	return nil
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
