// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	ManifestFieldMissingId
	ManifestVersionInvalidId
	ManifestNameInvalidId
	CargoNotFoundId
	BuildFailedId
	BuildArtifactMissingId
	NuspecSerializationId
	ArtifactUnreadableId
	ArchiveWriteFailedId
	OutputDirNotWritableId
	DiskWriteFailedId
	ConfigLoadFailedId
	InvalidNupkgId
)

const (
	cargoManifestDocs HttpLink = "https://doc.rust-lang.org/cargo/reference/manifest.html"
	cargoTargetsDocs  HttpLink = "https://doc.rust-lang.org/cargo/reference/cargo-targets.html"
	nuspecDocs        HttpLink = "https://learn.microsoft.com/en-us/nuget/reference/nuspec"
	ridCatalogDocs    HttpLink = "https://learn.microsoft.com/en-us/dotnet/core/rid-catalog"
	semverSpec        HttpLink = "https://semver.org/"
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is guidance text rendered with glamour.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry: long-form guidance for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink // never empty
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance and its links as terminal markdown.
// stylePath is a glamour style name ("dark", "light", "notty", ...) or a
// path to a style JSON file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))

	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- " + string(link))
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- " + string(link))
		}
	}

	return render(md.String(), stylePath)
}

//nolint:gochecknoglobals // Test seam and immutable catalog
var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Cargo manifest not found!

cargo-nuget needs the crate's Cargo.toml to know what to package.

## Things you can try:
- Run the command from the crate root, where Cargo.toml lives
- Point at the manifest explicitly:
~~~
$ cargo-nuget pack --manifest-path path/to/Cargo.toml
~~~`,
		docLinks: []HttpLink{cargoManifestDocs},
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Cargo.toml is not valid TOML!

The manifest could not be parsed. The error above names the line and column.

## Things you can try:
- Check for unclosed quotes or brackets near the reported position
- Confirm cargo itself accepts the manifest:
~~~
$ cargo metadata --format-version 1 --no-deps
~~~`,
		docLinks: []HttpLink{cargoManifestDocs},
	}

	manifestFieldMissingIssue = &Issue{
		id: ManifestFieldMissingId,
		mdMsg: `
# The package is missing metadata NuGet needs!

A NuGet package must have an id, a version, authors and a description, so the
` + "`[package]`" + ` table must declare all of them.

## Example:
~~~toml
[package]
name = "native-math"
version = "1.2.3"
authors = ["Ada Lovelace <ada@example.com>"]
description = "Fast math for .NET"
~~~`,
		docLinks: []HttpLink{cargoManifestDocs, nuspecDocs},
	}

	manifestVersionInvalidIssue = &Issue{
		id: ManifestVersionInvalidId,
		mdMsg: `
# The package version is not a full semantic version!

Versions must spell out MAJOR.MINOR.PATCH, optionally followed by a
pre-release (` + "`-beta.1`" + `) and build metadata (` + "`+build.5`" + `).
Shorthands such as ` + "`1.2`" + ` are rejected.`,
		docLinks: []HttpLink{cargoManifestDocs},
		extLinks: []HttpLink{semverSpec},
	}

	manifestNameInvalidIssue = &Issue{
		id: ManifestNameInvalidId,
		mdMsg: `
# The package name is not a valid crate name!

The name becomes the NuGet package id and the file name of the nupkg, so it
may only contain ASCII letters, digits, ` + "`-`" + ` and ` + "`_`" + `.

## Example:
~~~toml
[package]
name = "native-math"
~~~`,
		docLinks: []HttpLink{cargoManifestDocs},
	}

	cargoNotFoundIssue = &Issue{
		id: CargoNotFoundId,
		mdMsg: `
# cargo was not found!

The Rust toolchain is needed to build the library.

## Things you can try:
- Install Rust with rustup and make sure cargo is on your PATH
- Set a different binary in the config file:
~~~cue
cargo: binary: "/opt/rust/bin/cargo"
~~~
- Package a library you already built:
~~~
$ cargo-nuget pack --skip-build --lib-path target/release/libfoo.so
~~~`,
		docLinks: []HttpLink{cargoTargetsDocs},
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# cargo build failed!

cargo's own output above explains why the crate did not compile.

## Things you can try:
- Run the same build directly to reproduce it:
~~~
$ cargo build --lib
~~~
- Pass extra flags through with ` + "`--cargo-args`",
		docLinks: []HttpLink{cargoTargetsDocs},
	}

	buildArtifactMissingIssue = &Issue{
		id: BuildArtifactMissingId,
		mdMsg: `
# The build produced no dynamic library!

cargo finished but the expected shared library was not in the target
directory. NuGet native packages need a ` + "`cdylib`" + `.

## Example:
~~~toml
[lib]
crate-type = ["cdylib"]
~~~`,
		docLinks: []HttpLink{cargoTargetsDocs},
	}

	nuspecSerializationIssue = &Issue{
		id: NuspecSerializationId,
		mdMsg: `
# The package metadata cannot be written as XML!

A field contains characters XML 1.0 cannot carry, such as control
characters. Remove them from the field named above in Cargo.toml.`,
		docLinks: []HttpLink{nuspecDocs},
	}

	artifactUnreadableIssue = &Issue{
		id: ArtifactUnreadableId,
		mdMsg: `
# The native library could not be read!

The library disappeared or became unreadable between the build and the
packing step.

## Things you can try:
- Check that nothing cleans the target directory concurrently
- Check the file permissions of the library`,
		docLinks: []HttpLink{ridCatalogDocs},
	}

	archiveWriteFailedIssue = &Issue{
		id: ArchiveWriteFailedId,
		mdMsg: `
# The package archive could not be assembled!

Building the zip stream in memory failed. This usually means the process ran
out of memory or two targets map to the same runtime identifier.`,
		docLinks: []HttpLink{ridCatalogDocs},
	}

	outputDirNotWritableIssue = &Issue{
		id: OutputDirNotWritableId,
		mdMsg: `
# The output directory is not writable!

## Things you can try:
- Pick another directory with ` + "`--nupkg-dir`" + `
- Make sure the path is a directory and not a file
- Check the directory permissions`,
		docLinks: []HttpLink{nuspecDocs},
	}

	diskWriteFailedIssue = &Issue{
		id: DiskWriteFailedId,
		mdMsg: `
# Writing the package failed!

Nothing was left behind at the destination: any previous package there is
unchanged.

## Things you can try:
- Free some disk space
- Check the file permissions of the destination`,
		docLinks: []HttpLink{nuspecDocs},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# The configuration file could not be loaded!

## Things you can try:
- Print the effective configuration:
~~~
$ cargo-nuget config show
~~~
- Recreate the default file:
~~~
$ cargo-nuget config init --force
~~~`,
		docLinks: []HttpLink{cargoManifestDocs},
	}

	invalidNupkgIssue = &Issue{
		id: InvalidNupkgId,
		mdMsg: `
# The file is not a valid NuGet package!

A nupkg is a zip archive with one .nuspec file at its root.`,
		docLinks: []HttpLink{nuspecDocs},
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():       manifestNotFoundIssue,
		manifestParseErrorIssue.Id():     manifestParseErrorIssue,
		manifestFieldMissingIssue.Id():   manifestFieldMissingIssue,
		manifestVersionInvalidIssue.Id(): manifestVersionInvalidIssue,
		manifestNameInvalidIssue.Id():    manifestNameInvalidIssue,
		cargoNotFoundIssue.Id():          cargoNotFoundIssue,
		buildFailedIssue.Id():            buildFailedIssue,
		buildArtifactMissingIssue.Id():   buildArtifactMissingIssue,
		nuspecSerializationIssue.Id():    nuspecSerializationIssue,
		artifactUnreadableIssue.Id():     artifactUnreadableIssue,
		archiveWriteFailedIssue.Id():     archiveWriteFailedIssue,
		outputDirNotWritableIssue.Id():   outputDirNotWritableIssue,
		diskWriteFailedIssue.Id():        diskWriteFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		invalidNupkgIssue.Id():           invalidNupkgIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
