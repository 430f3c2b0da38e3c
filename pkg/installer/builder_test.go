package installer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/launchrctl/installbuild/internal/installbuild"
	"github.com/launchrctl/installbuild/pkg/procrun"
	"github.com/launchrctl/installbuild/pkg/procrun/mocks"
)

const testInstallerData = "installer payload"

type testRevealer struct {
	paths []string
	err   error
}

func (r *testRevealer) Reveal(path string) error {
	r.paths = append(r.paths, path)
	return r.err
}

func testClock() time.Time {
	return time.Date(2024, time.March, 7, 15, 4, 5, 0, time.UTC)
}

// prepareSource creates a source tree with a compiled installer.
func prepareSource(t *testing.T, withOutput bool) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SourceRoot = t.TempDir()
	cfg.Compiler.Path = "iscc"
	cfg.Interactive = false
	require.NoError(t, os.MkdirAll(cfg.OutputPath(), 0750))
	require.NoError(t, os.WriteFile(cfg.ScriptPath(), []byte("[Setup]\n"), 0600))
	if withOutput {
		require.NoError(t, os.WriteFile(cfg.OutputFile(), []byte(testInstallerData), 0600))
	}
	return cfg
}

func newTestBuilder(cfg Config, r procrun.Runner, rev Revealer, in string) *Builder {
	return New(cfg,
		WithRunner(r),
		WithRevealer(rev),
		WithStreams(installbuild.NewBasicStreams(io.NopCloser(strings.NewReader(in)), io.Discard, io.Discard)),
		WithTerminal(installbuild.NewTerminal()),
		WithClock(testClock),
	)
}

func expectCompile(r *mocks.MockRunner, cfg Config, res procrun.Result) *gomock.Call {
	return r.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd procrun.Command) procrun.Result {
			res.Command = cmd
			if cmd.Path != "/opt/bin/iscc" || len(cmd.Args) != 1 || cmd.Args[0] != cfg.ScriptPath() || cmd.Capture {
				res.Err = errors.New("unexpected compiler invocation: " + cmd.String())
			}
			return res
		})
}

func expectRevision(r *mocks.MockRunner, cfg Config, res procrun.Result) *gomock.Call {
	return r.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd procrun.Command) procrun.Result {
			res.Command = cmd
			if cmd.Path != "hg" || strings.Join(cmd.Args, " ") != "tip -q" || cmd.Dir != cfg.SourceRoot || !cmd.Capture {
				res.Err = errors.New("unexpected version control invocation: " + cmd.String())
			}
			return res
		})
}

func TestBuilderRun(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRunner(ctrl)
	rev := &testRevealer{}
	cfg := prepareSource(t, true)

	gomock.InOrder(
		r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
		expectCompile(r, cfg, procrun.Result{}),
		expectRevision(r, cfg, procrun.Result{Stdout: "42:abcd\n"}),
	)

	dir, err := newTestBuilder(cfg, r, rev, "").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.OutputPath(), dir)

	stamped := filepath.Join(cfg.SourceRoot, "Build", "Output", "ZeroEngineSetup.2024.03.07.42.exe")
	data, err := os.ReadFile(stamped) //nolint:gosec // Test path.
	require.NoError(t, err)
	assert.Equal(t, testInstallerData, string(data))
	assert.NoFileExists(t, cfg.OutputFile())
	assert.Equal(t, []string{stamped}, rev.paths)
}

func TestBuilderBuildArtifact(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRunner(ctrl)
	cfg := prepareSource(t, true)
	cfg.Reveal.Enabled = false
	rev := &testRevealer{}

	gomock.InOrder(
		r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
		expectCompile(r, cfg, procrun.Result{}),
		expectRevision(r, cfg, procrun.Result{Stdout: "  1234:abcdef0123 \n"}),
	)

	a, err := newTestBuilder(cfg, r, rev, "").Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234", a.Revision)
	assert.Equal(t, ".2024.03.07.", a.DateStamp)
	assert.Equal(t, "ZeroEngineSetup.2024.03.07.1234.exe", filepath.Base(a.Path))
	assert.NotContains(t, filepath.Base(a.Path), ":")
	assert.FileExists(t, a.Path)
	assert.Empty(t, rev.paths)
}

func TestBuilderCompilerNotFound(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		interactive bool
		expect      func(r *mocks.MockRunner, cfg Config)
	}
	tts := []testCase{
		{
			name: "lookup fails",
			expect: func(r *mocks.MockRunner, _ Config) {
				r.EXPECT().LookPath("iscc").Return("", procrun.ErrNotFound)
			},
		},
		{
			name:        "lookup fails interactive",
			interactive: true,
			expect: func(r *mocks.MockRunner, _ Config) {
				r.EXPECT().LookPath("iscc").Return("", procrun.ErrNotFound)
			},
		},
		{
			name: "start fails",
			expect: func(r *mocks.MockRunner, cfg Config) {
				gomock.InOrder(
					r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
					expectCompile(r, cfg, procrun.Result{ExitCode: -1, Err: procrun.ErrNotFound}),
				)
			},
		},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			r := mocks.NewMockRunner(ctrl)
			rev := &testRevealer{}
			cfg := prepareSource(t, true)
			cfg.Interactive = tt.interactive
			tt.expect(r, cfg)

			dir, err := newTestBuilder(cfg, r, rev, "x").Run(context.Background())
			assert.ErrorIs(t, err, ErrCompilerNotFound)
			assert.Empty(t, dir)
			// Nothing is renamed or revealed.
			assert.FileExists(t, cfg.OutputFile())
			assert.Empty(t, rev.paths)
		})
	}
}

func TestBuilderFailures(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name   string
		output bool
		expect func(r *mocks.MockRunner, cfg Config)
		code   int
		err    error
	}
	tts := []testCase{
		{
			name:   "compiler fails",
			output: true,
			expect: func(r *mocks.MockRunner, cfg Config) {
				gomock.InOrder(
					r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
					expectCompile(r, cfg, procrun.Result{
						ExitCode: 2,
						Err:      installbuild.NewExitError(2, "installer compiler finished with exit code 2"),
						Stderr:   "Error on line 3",
					}),
				)
			},
			code: 2,
		},
		{
			name:   "version control fails",
			output: true,
			expect: func(r *mocks.MockRunner, cfg Config) {
				gomock.InOrder(
					r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
					expectCompile(r, cfg, procrun.Result{}),
					expectRevision(r, cfg, procrun.Result{
						ExitCode: 255,
						Err:      installbuild.NewExitError(255, "version control finished with exit code 255"),
						Stderr:   "abort: no repository found",
					}),
				)
			},
			code: 255,
		},
		{
			name:   "version control is missing",
			output: true,
			expect: func(r *mocks.MockRunner, cfg Config) {
				gomock.InOrder(
					r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
					expectCompile(r, cfg, procrun.Result{}),
					expectRevision(r, cfg, procrun.Result{ExitCode: -1, Err: procrun.ErrNotFound}),
				)
			},
			code: 1,
			err:  procrun.ErrNotFound,
		},
		{
			name:   "installer is missing",
			output: false,
			expect: func(r *mocks.MockRunner, cfg Config) {
				gomock.InOrder(
					r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
					expectCompile(r, cfg, procrun.Result{}),
					expectRevision(r, cfg, procrun.Result{Stdout: "42:abcd"}),
				)
			},
			code: 1,
			err:  ErrInstallerMissing,
		},
	}
	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			r := mocks.NewMockRunner(ctrl)
			rev := &testRevealer{}
			cfg := prepareSource(t, tt.output)
			tt.expect(r, cfg)

			_, err := newTestBuilder(cfg, r, rev, "").Build(context.Background())
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrCompilerNotFound)
			assert.Equal(t, tt.code, installbuild.ExitCodeOf(err))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			if tt.output {
				assert.FileExists(t, cfg.OutputFile())
			}
			entries, errDir := os.ReadDir(cfg.OutputPath())
			require.NoError(t, errDir)
			for _, e := range entries {
				assert.False(t, strings.Contains(e.Name(), ".2024.03.07."), "unexpected stamped file %s", e.Name())
			}
			assert.Empty(t, rev.paths)
		})
	}
}

func TestBuilderEmptyRevision(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRunner(ctrl)
	cfg := prepareSource(t, true)
	rev := &testRevealer{err: errors.New("no display")}

	gomock.InOrder(
		r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
		expectCompile(r, cfg, procrun.Result{}),
		expectRevision(r, cfg, procrun.Result{Stdout: "\n"}),
	)

	// A failed reveal doesn't fail the build.
	a, err := newTestBuilder(cfg, r, rev, "").Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, a.Revision)
	assert.Equal(t, "ZeroEngineSetup.2024.03.07..exe", filepath.Base(a.Path))
	assert.Len(t, rev.paths, 1)
}

func TestBuilderEmptyVCSCommand(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRunner(ctrl)
	cfg := prepareSource(t, true)
	cfg.VCSCommand = " "

	gomock.InOrder(
		r.EXPECT().LookPath("iscc").Return("/opt/bin/iscc", nil),
		expectCompile(r, cfg, procrun.Result{}),
	)

	_, err := newTestBuilder(cfg, r, &testRevealer{}, "").Build(context.Background())
	assert.Error(t, err)
	assert.FileExists(t, cfg.OutputFile())
}
