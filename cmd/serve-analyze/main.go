// Command serve-analyze replays pose landmark recordings through the
// fixed-step serve analysis and prints a JSON report per subject.
//
// Usage:
//
//	serve-analyze -recording alice.json [-compare coach.json] [-units cm] [-out reports/]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banshee-data/serve.report/internal/config"
	"github.com/banshee-data/serve.report/internal/fsutil"
	"github.com/banshee-data/serve.report/internal/monitoring"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/banshee-data/serve.report/internal/scan"
	"github.com/banshee-data/serve.report/internal/security"
	"github.com/banshee-data/serve.report/internal/serve"
	"github.com/banshee-data/serve.report/internal/units"
	"github.com/banshee-data/serve.report/internal/version"
)

var (
	recordingPath = flag.String("recording", "", "Path to a JSON landmark recording (required)")
	comparePath   = flag.String("compare", "", "Second recording, analyzed on the first one's normalized timeline")
	configPath    = flag.String("config", "", "Tuning config JSON (default "+config.DefaultConfigPath+")")
	reduced       = flag.Bool("reduced", false, "Use the reduced-rate preset "+config.ReducedConfigPath)
	fps           = flag.Float64("fps", 0, "Override the analysis sample rate in steps per second")
	unit          = flag.String("units", units.Inches, "Units for jump and drift: "+units.GetValidUnitsString())
	outDir        = flag.String("out", "", "Write one report file per subject into this directory instead of stdout")
	verbose       = flag.Bool("verbose", false, "Log phase transitions and inference timeouts to stderr")
	trace         = flag.Bool("trace", false, "Log per-frame telemetry to stderr")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line.
type options struct {
	Recording string
	Compare   string
	Config    string
	Reduced   bool
	FPS       float64
	Units     string
	OutDir    string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("serve-analyze", version.String())
		return
	}
	if *recordingPath == "" {
		log.Fatal("-recording is required")
	}
	if !units.IsValid(*unit) {
		log.Fatalf("Invalid -units %q: must be one of %s", *unit, units.GetValidUnitsString())
	}

	setupLogging(os.Stderr, *verbose, *trace)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		Recording: *recordingPath,
		Compare:   *comparePath,
		Config:    *configPath,
		Reduced:   *reduced,
		FPS:       *fps,
		Units:     *unit,
		OutDir:    *outDir,
	}
	if _, err := run(ctx, opts, fsutil.OSFileSystem{}, os.Stdout); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
}

// setupLogging routes the analysis log streams to w. Ops is always on.
func setupLogging(w io.Writer, verbose, trace bool) {
	lw := monitoring.LogWriters{Ops: w}
	if verbose {
		lw.Diag = w
	}
	if trace {
		lw.Trace = w
	}
	scan.SetLogWriters(lw)
	serve.SetLogWriters(lw)
}

// loadTuning picks the explicit config, the reduced preset, or the defaults
// file. Without an explicit path a missing defaults file falls back to the
// built-in values.
func loadTuning(opts options) (*config.TuningConfig, error) {
	if opts.Config != "" {
		return config.LoadTuningConfig(opts.Config)
	}
	name := config.DefaultConfigPath
	if opts.Reduced {
		name = config.ReducedConfigPath
	}
	path, ok := config.FindConfigFile(name)
	if !ok {
		if opts.Reduced {
			return nil, fmt.Errorf("cannot find %s", name)
		}
		log.Printf("No %s found, using built-in defaults", name)
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// loadRecording reads a recording and names it after its file when the
// recording carries no subject.
func loadRecording(fsys fsutil.FileSystem, path string) (*pose.Recording, error) {
	rec, err := pose.LoadRecording(fsys, path)
	if err != nil {
		return nil, err
	}
	if rec.Subject == "" {
		rec.Subject = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rec, nil
}

// run analyzes the requested recordings, writes the reports and returns them.
func run(ctx context.Context, opts options, fsys fsutil.FileSystem, stdout io.Writer) ([]serve.Report, error) {
	if !units.IsValid(opts.Units) {
		return nil, fmt.Errorf("invalid units %q: must be one of %s", opts.Units, units.GetValidUnitsString())
	}
	tuning, err := loadTuning(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load tuning config: %w", err)
	}
	cfg := scan.ConfigFromTuning(tuning)
	if opts.FPS > 0 {
		cfg.SampleRateHz = opts.FPS
	}

	recA, err := loadRecording(fsys, opts.Recording)
	if err != nil {
		return nil, err
	}

	driver := scan.NewDriver(cfg, nil)
	var results []*scan.Result
	if opts.Compare == "" {
		res, err := driver.Run(ctx, scan.ReplaySubject(recA))
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	} else {
		recB, err := loadRecording(fsys, opts.Compare)
		if err != nil {
			return nil, err
		}
		if recB.Subject == recA.Subject {
			recB.Subject += "-compare"
		}
		a, b, err := driver.Compare(ctx, scan.ReplaySubject(recA), scan.ReplaySubject(recB))
		if err != nil {
			return nil, err
		}
		results = append(results, a, b)
	}

	reports := make([]serve.Report, len(results))
	for i, res := range results {
		if reports[i], err = res.Report(opts.Units); err != nil {
			return nil, err
		}
	}
	if err := writeReports(fsys, opts.OutDir, reports, stdout); err != nil {
		return nil, err
	}
	return reports, nil
}

// writeReports prints a single report object, or an array in comparison
// mode, to stdout. With outDir set each report goes to its own file.
func writeReports(fsys fsutil.FileSystem, outDir string, reports []serve.Report, stdout io.Writer) error {
	if outDir == "" {
		var v any = reports
		if len(reports) == 1 {
			v = reports[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode reports: %w", err)
		}
		_, err = stdout.Write(append(data, '\n'))
		return err
	}

	for _, rep := range reports {
		path := filepath.Join(outDir, security.ReportFilename(rep.Subject, rep.RunID))
		if err := security.ValidateReportPath(path); err != nil {
			return err
		}
		if err := serve.WriteReport(fsys, path, rep); err != nil {
			return err
		}
		log.Printf("Report for %s written to %s", rep.Subject, path)
	}
	return nil
}
