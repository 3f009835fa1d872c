package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/serve.report/internal/config"
	"github.com/banshee-data/serve.report/internal/fsutil"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/banshee-data/serve.report/internal/security"
	"github.com/banshee-data/serve.report/internal/serve"
	"github.com/banshee-data/serve.report/internal/testutil"
)

const eps = 1e-9

// defaultsPath locates the tuning defaults from this package directory.
func defaultsPath(t *testing.T) string {
	t.Helper()
	path, ok := config.FindConfigFile(config.DefaultConfigPath)
	require.True(t, ok, "cannot find %s", config.DefaultConfigPath)
	return path
}

// saveRecordings writes the reference serve under each name and returns the
// in-memory filesystem.
func saveRecordings(t *testing.T, recs map[string]*pose.Recording) *fsutil.MemoryFileSystem {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()
	for path, rec := range recs {
		require.NoError(t, pose.SaveRecording(fsys, path, rec))
	}
	return fsys
}

func TestRun_SingleRecordingToStdout(t *testing.T) {
	fsys := saveRecordings(t, map[string]*pose.Recording{
		"/recordings/alice.json": testutil.DefaultServe(20).Recording("alice"),
	})
	var stdout bytes.Buffer

	reports, err := run(context.Background(), options{
		Recording: "/recordings/alice.json",
		Config:    defaultsPath(t),
		FPS:       20,
		Units:     "cm",
	}, fsys, &stdout)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	var got serve.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "alice", got.Subject)
	assert.Equal(t, reports[0].RunID, got.RunID)
	assert.Equal(t, serve.Finished, got.Phase)
	assert.InDelta(t, 1.0, got.ImpactTime, eps)
	assert.Equal(t, "cm", got.Units)
	assert.InDelta(t, 2.4*2.54, got.Jump, 1e-6)
	assert.Equal(t, 61, got.FramesProcessed)
	assert.Contains(t, got.Snapshots, "impact")
	assert.InDelta(t, 1.0, got.Snapshots["impact"].Time, eps)
}

func TestRun_SubjectFromFilename(t *testing.T) {
	rec := testutil.DefaultServe(20).Recording("")
	fsys := saveRecordings(t, map[string]*pose.Recording{"/r/practice-03.json": rec})

	reports, err := run(context.Background(), options{
		Recording: "/r/practice-03.json",
		Config:    defaultsPath(t),
		FPS:       20,
		Units:     "in",
	}, fsys, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "practice-03", reports[0].Subject)
}

func TestRun_ComparisonToFiles(t *testing.T) {
	short := testutil.DefaultServe(20)
	short.Duration = 1.5
	fsys := saveRecordings(t, map[string]*pose.Recording{
		"/r/a.json": testutil.DefaultServe(20).Recording("alice"),
		"/r/b.json": short.Recording("alice"),
	})
	outDir := filepath.Join(t.TempDir(), "reports")
	var stdout bytes.Buffer

	reports, err := run(context.Background(), options{
		Recording: "/r/a.json",
		Compare:   "/r/b.json",
		Config:    defaultsPath(t),
		FPS:       20,
		Units:     "in",
		OutDir:    outDir,
	}, fsys, &stdout)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Empty(t, stdout.String())

	assert.Equal(t, "alice", reports[0].Subject)
	assert.Equal(t, "alice-compare", reports[1].Subject)
	assert.Equal(t, reports[0].RunID, reports[1].RunID)

	for _, rep := range reports {
		path := filepath.Join(outDir, security.ReportFilename(rep.Subject, rep.RunID))
		require.True(t, fsys.Exists(path), "missing %s", path)
		data, err := fsys.ReadFile(path)
		require.NoError(t, err)
		var got serve.Report
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, rep.Subject, got.Subject)
		assert.Equal(t, rep.FramesProcessed, got.FramesProcessed)
	}
}

func TestRun_ComparisonToStdoutIsArray(t *testing.T) {
	fsys := saveRecordings(t, map[string]*pose.Recording{
		"/r/a.json": testutil.DefaultServe(20).Recording("a"),
		"/r/b.json": testutil.DefaultServe(20).Recording("b"),
	})
	var stdout bytes.Buffer

	_, err := run(context.Background(), options{
		Recording: "/r/a.json",
		Compare:   "/r/b.json",
		Config:    defaultsPath(t),
		FPS:       20,
		Units:     "in",
	}, fsys, &stdout)
	require.NoError(t, err)

	var got []serve.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Subject)
	assert.Equal(t, "b", got[1].Subject)
	assert.InDelta(t, got[0].ImpactTime, got[1].ImpactTime, eps)
}

func TestRun_Errors(t *testing.T) {
	fsys := saveRecordings(t, map[string]*pose.Recording{
		"/r/a.json": testutil.DefaultServe(20).Recording("a"),
	})
	tests := []struct {
		name    string
		opts    options
		wantErr string
	}{
		{"bad units", options{Recording: "/r/a.json", Units: "yd"}, "invalid units"},
		{"missing recording", options{Recording: "/r/missing.json", Units: "in"}, "missing.json"},
		{"missing compare", options{Recording: "/r/a.json", Compare: "/r/nope.json", Units: "in"}, "nope.json"},
		{"bad config", options{Recording: "/r/a.json", Config: "tuning.yaml", Units: "in"}, "tuning config"},
		{"unsafe output", options{Recording: "/r/a.json", Units: "in", OutDir: "/etc/serve"}, "allowed directories"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.Config == "" {
				tt.opts.Config = defaultsPath(t)
			}
			_, err := run(context.Background(), tt.opts, fsys, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	fsys := saveRecordings(t, map[string]*pose.Recording{
		"/r/a.json": testutil.DefaultServe(20).Recording("a"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, options{Recording: "/r/a.json", Config: defaultsPath(t), Units: "in"}, fsys, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadTuning(t *testing.T) {
	cfg, err := loadTuning(options{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.GetSampleRateHz())

	cfg, err = loadTuning(options{Reduced: true})
	require.NoError(t, err)
	assert.Equal(t, 15.0, cfg.GetSampleRateHz())

	// An explicit path wins over the preset flag.
	cfg, err = loadTuning(options{Config: defaultsPath(t), Reduced: true})
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.GetSampleRateHz())
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "", *recordingPath)
	assert.Equal(t, "in", *unit)
	assert.Equal(t, 0.0, *fps)
	assert.False(t, *reduced)
	assert.False(t, *showVersion)
}
