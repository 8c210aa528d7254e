// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"cargo-nuget/internal/issue"
	"cargo-nuget/pkg/nuget"
)

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.nupkg>",
		Short: "List a package's entries and print its nuspec",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return inspectPackage(app.stdout, args[0])
		},
	}
}

func inspectPackage(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("reading nupkg").
			WithResource(path).
			WithSuggestion("Check the path of the package").
			Wrap(err).
			BuildError()
	}

	contents, err := nuget.ReadNupkg(nuget.NewBuf(data))
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("reading nupkg").
			WithResource(path).
			WithSuggestion("Recreate the package with 'cargo-nuget pack'").
			WithIssue(issue.InvalidNupkgId).
			Wrap(err).
			BuildError()
	}

	spec := contents.Nuspec
	fmt.Fprintln(w, TitleStyle.Render(spec.ID+" "+spec.Version))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("authors:    "), spec.Authors)
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("description:"), spec.Description)
	if len(spec.Dependencies) == 0 {
		fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("depends on: "), SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintln(w, KeyStyle.Render("depends on:"))
		for _, id := range slices.Sorted(maps.Keys(spec.Dependencies)) {
			fmt.Fprintf(w, "  - %s %s\n", id, spec.Dependencies[id])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Entries"))
	for _, e := range contents.Entries {
		fmt.Fprintf(w, "  %s %s\n", e.Name, SubtitleStyle.Render(fmt.Sprintf("(%d bytes)", e.Data.Len())))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(spec.FileName()))
	_, err = w.Write(spec.XML.Bytes())
	return err
}
