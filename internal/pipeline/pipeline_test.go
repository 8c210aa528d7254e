// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargo-nuget/internal/testutil"
	"cargo-nuget/internal/testutil/cratetest"
	"cargo-nuget/pkg/cargo"
	"cargo-nuget/pkg/nuget"
)

var libBytes = []byte("\x7fELF fake native library")

type builderFunc func(ctx context.Context, cfg *cargo.Config) (*cargo.BuildOutput, error)

func (f builderFunc) Build(ctx context.Context, cfg *cargo.Config) (*cargo.BuildOutput, error) {
	return f(ctx, cfg)
}

func newRunner(builder cargo.Builder) *Runner {
	return New(builder, WithClock(testutil.NewFakeClock(time.Time{})))
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	crateDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "dist")
	manifest := cratetest.Write(t, crateDir, cratetest.WithName("native-math"), cratetest.WithAuthors("A B", "C D"))
	builder := &cargo.FakeBuilder{Contents: libBytes}

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	res, err := New(builder,
		WithLogger(logger),
		WithClock(testutil.NewFakeClock(time.Time{})),
	).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})
	require.NoError(t, err)

	assert.Equal(t, 1, builder.CallCount())
	assert.Equal(t, "native-math", res.Nuspec.ID)
	assert.Equal(t, "A B, C D", res.Nuspec.Authors)
	assert.Equal(t, "native-math-1.2.3.nupkg", res.Nupkg.Name)
	assert.Equal(t, filepath.Join(outDir, "native-math-1.2.3.nupkg"), res.Saved.Path)
	assert.Equal(t, []string{"native-math-1.2.3.nupkg"}, testutil.ListDir(t, outDir))

	written := nuget.NewBuf(testutil.MustReadFile(t, res.Saved.Path))
	assert.True(t, written.Equal(res.Nupkg.Buf), "file on disk differs from the packed buffer")
	assert.Equal(t, nuget.Digest(written), res.Saved.Digest)

	contents, err := nuget.ReadNupkg(written)
	require.NoError(t, err)
	assert.True(t, contents.Nuspec.Equal(res.Nuspec))
	lib, ok := contents.Entry(nuget.LocalTarget().EntryPath("libnative_math.so"))
	require.True(t, ok, "library entry missing")
	assert.Equal(t, libBytes, lib.Data.Bytes())

	for _, s := range []Stage{StageReadManifest, StageBuild, StageSpec, StagePack, StageSave} {
		assert.Contains(t, logs.String(), string(s))
	}
	assert.NotContains(t, logs.String(), string(libBytes))
}

func TestRun_ScenarioB_MissingVersionSkipsBuild(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir(), cratetest.Without("version"))
	outDir := t.TempDir()
	builder := &cargo.FakeBuilder{Contents: libBytes}

	_, err := newRunner(builder).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})
	require.Error(t, err)

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageReadManifest, stage)
	assert.ErrorIs(t, err, cargo.ErrManifestFieldMissing)

	var fieldErr *cargo.ManifestFieldMissingError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "version", fieldErr.Field)

	assert.Zero(t, builder.CallCount(), "builder must not run after a manifest failure")
	assert.Empty(t, testutil.ListDir(t, outDir))
	assert.True(t, strings.HasPrefix(err.Error(), "reading cargo manifest: "), err.Error())
}

func TestRun_ScenarioC_SaveFailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	blocker := filepath.Join(t.TempDir(), "dist")
	testutil.MustWriteFile(t, blocker, []byte("not a directory"))
	builder := &cargo.FakeBuilder{Contents: libBytes}

	res, err := newRunner(builder).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: blocker})
	require.Error(t, err)
	assert.Nil(t, res)

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageSave, stage)
	assert.ErrorIs(t, err, nuget.ErrDirectoryNotWritable)
	assert.Equal(t, 1, builder.CallCount())

	_, statErr := os.Stat(filepath.Join(blocker, "foo-1.2.3.nupkg"))
	assert.Error(t, statErr)
}

// Not parallel: changes the working directory.
func TestRun_ScenarioD_DefaultsToWorkingDirectory(t *testing.T) {
	crateDir := t.TempDir()
	cratetest.Write(t, crateDir)
	t.Chdir(crateDir)

	res, err := newRunner(&cargo.FakeBuilder{Contents: libBytes}).Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "foo-1.2.3.nupkg", res.Saved.Path)
	info, err := os.Stat(filepath.Join(crateDir, "foo-1.2.3.nupkg"))
	require.NoError(t, err)
	assert.Equal(t, int64(res.Nupkg.Buf.Len()), info.Size())
}

func TestRun_BuildFailure(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	outDir := t.TempDir()
	builder := &cargo.FakeBuilder{Err: &cargo.BuildFailedError{ExitCode: 101}}

	_, err := newRunner(builder).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageBuild, stage)
	assert.ErrorIs(t, err, cargo.ErrBuildFailed)
	assert.Empty(t, testutil.ListDir(t, outDir))
}

func TestRun_NilBuildOutput(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	outDir := t.TempDir()
	builder := builderFunc(func(context.Context, *cargo.Config) (*cargo.BuildOutput, error) {
		return nil, nil
	})

	_, err := newRunner(builder).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageBuild, stage)
	assert.ErrorIs(t, err, ErrNoBuildOutput)
	assert.Empty(t, testutil.ListDir(t, outDir))
}

func TestRun_PrebuiltRejectsUnsafeCrateName(t *testing.T) {
	t.Parallel()

	lib := filepath.Join(t.TempDir(), "libfoo.so")
	testutil.MustWriteFile(t, lib, libBytes)

	for _, name := range []string{"sub/foo", "../escape"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			manifest := cratetest.Write(t, t.TempDir(), cratetest.WithName(name))
			parent := t.TempDir()
			outDir := filepath.Join(parent, "out")

			_, err := newRunner(cargo.PrebuiltBuilder{Path: lib}).Run(context.Background(),
				Options{ManifestPath: manifest, NupkgDir: outDir})

			stage, ok := StageOf(err)
			require.True(t, ok)
			assert.Equal(t, StageReadManifest, stage)
			assert.ErrorIs(t, err, cargo.ErrManifestNameInvalid)
			assert.Empty(t, testutil.ListDir(t, parent), "nothing may be written next to or inside the output directory")
		})
	}
}

func TestRun_SpecFailure(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir(), cratetest.WithDescription("rings a bell\a"))
	outDir := t.TempDir()

	_, err := newRunner(&cargo.FakeBuilder{Contents: libBytes}).Run(context.Background(),
		Options{ManifestPath: manifest, NupkgDir: outDir})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageSpec, stage)
	assert.ErrorIs(t, err, nuget.ErrSerialization)
	assert.Empty(t, testutil.ListDir(t, outDir))
}

func TestRun_PackFailure(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	outDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "libfoo.so")
	builder := builderFunc(func(context.Context, *cargo.Config) (*cargo.BuildOutput, error) {
		return &cargo.BuildOutput{Target: cargo.BuildTargetLocal, Path: missing}, nil
	})

	_, err := newRunner(builder).Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StagePack, stage)
	assert.ErrorIs(t, err, nuget.ErrBuildArtifactUnreadable)
	assert.Empty(t, testutil.ListDir(t, outDir))
}

func TestRun_ReusableAndOverwrites(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	outDir := t.TempDir()
	builder := &cargo.FakeBuilder{Contents: libBytes}
	clock := testutil.NewFakeClock(time.Time{})
	runner := New(builder, WithClock(clock))

	first, err := runner.Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	builder.Contents = []byte("rebuilt library")
	second, err := runner.Run(context.Background(), Options{ManifestPath: manifest, NupkgDir: outDir})
	require.NoError(t, err)

	assert.Equal(t, first.Saved.Path, second.Saved.Path)
	assert.Equal(t, []string{"foo-1.2.3.nupkg"}, testutil.ListDir(t, outDir))
	assert.Equal(t, second.Nupkg.Buf.Bytes(), testutil.MustReadFile(t, second.Saved.Path))
	assert.NotEqual(t, first.Saved.Digest, second.Saved.Digest)
}

func TestRun_NoBuilder(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoBuilder)
}

func TestRun_CanceledBuild(t *testing.T) {
	t.Parallel()

	manifest := cratetest.Write(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(&cargo.FakeBuilder{Contents: libBytes}).Run(ctx, Options{ManifestPath: manifest, NupkgDir: t.TempDir()})

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageBuild, stage)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &StageError{Stage: StagePack, Err: cause}

	assert.Equal(t, "building nupkg: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	_, ok := StageOf(cause)
	assert.False(t, ok)
}
