// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"cargo-nuget/internal/issue"
	"cargo-nuget/internal/pipeline"
	"cargo-nuget/pkg/cargo"
	"cargo-nuget/pkg/nuget"
)

// issueStyle is the glamour style used for catalog guidance.
const issueStyle = "dark"

// failureClasses maps a pipeline cause to its catalog entry and a one-line
// hint. The first match wins, so more specific causes come first.
//
//nolint:gochecknoglobals // Immutable lookup table
var failureClasses = []struct {
	target     error
	id         issue.Id
	suggestion string
}{
	{cargo.ErrManifestNotFound, issue.ManifestNotFoundId, "Run from the crate root or pass --manifest-path"},
	{cargo.ErrManifestParse, issue.ManifestParseErrorId, "Fix the TOML syntax at the reported position"},
	{cargo.ErrManifestFieldMissing, issue.ManifestFieldMissingId, "Add the missing key to the [package] table of Cargo.toml"},
	{cargo.ErrManifestVersionInvalid, issue.ManifestVersionInvalidId, "Use a full MAJOR.MINOR.PATCH version"},
	{cargo.ErrManifestNameInvalid, issue.ManifestNameInvalidId, "Use only letters, digits, '-' and '_' in package.name"},
	{exec.ErrNotFound, issue.CargoNotFoundId, "Install the Rust toolchain or set cargo.binary in the config file"},
	{cargo.ErrBuildFailed, issue.BuildFailedId, "Run 'cargo build --lib' to see the compiler errors"},
	{cargo.ErrBuildArtifactMissing, issue.BuildArtifactMissingId, "Declare crate-type = [\"cdylib\"] in the [lib] table"},
	{nuget.ErrSerialization, issue.NuspecSerializationId, "Remove control characters from the named Cargo.toml field"},
	{nuget.ErrBuildArtifactUnreadable, issue.ArtifactUnreadableId, "Check that nothing removed the library after the build"},
	{nuget.ErrArchiveWrite, issue.ArchiveWriteFailedId, "Retry with more free memory"},
	{nuget.ErrDirectoryNotWritable, issue.OutputDirNotWritableId, "Pick another directory with --nupkg-dir"},
	{nuget.ErrDiskWrite, issue.DiskWriteFailedId, "Free some disk space and retry"},
}

// actionableFromPipeline converts a pipeline error into an ActionableError
// whose operation is the failing stage's label.
func actionableFromPipeline(err error) *issue.ActionableError {
	ctx := issue.NewErrorContext().WithOperation("packaging crate").Wrap(err)

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		ctx.WithOperation(string(stageErr.Stage)).Wrap(stageErr.Err)
	}

	for _, c := range failureClasses {
		if errors.Is(err, c.target) {
			ctx.WithIssue(c.id).WithSuggestion(c.suggestion)
			break
		}
	}

	return ctx.Build()
}

// renderPackFailure prints the error chain, the stage label first, followed
// by the failure banner. Verbose mode adds the catalog guidance.
func renderPackFailure(w io.Writer, err error, verbose bool) {
	ae := actionableFromPipeline(err)
	fmt.Fprintln(w, ErrorChainStyle.Render(ae.Format(verbose)))

	if verbose && ae.Issue != 0 {
		if rendered, renderErr := issue.Get(ae.Issue).Render(issueStyle); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}

	fmt.Fprintln(w, ErrorStyle.Render("The build did not finish successfully"))
}

func renderPackSuccess(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, SuccessStyle.Render("The build finished successfully"))
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render("path:  "), res.Saved.Path)
	fmt.Fprintf(w, "  %s %d bytes\n", KeyStyle.Render("size:  "), res.Saved.Size)
	fmt.Fprintf(w, "  %s blake3:%s\n", KeyStyle.Render("digest:"), res.Saved.Digest)
}
