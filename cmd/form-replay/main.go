// Command form-replay runs a recorded stream of detector frames through the
// analysis pipeline and reports on the session.
//
// Input is JSON Lines, one detector frame per line:
//
//	{"timestamp":0.1,"keypoints":{"rightKnee":{"x":0.55,"y":0.7,"confidence":0.95}, ...}}
//
// Results can be persisted to SQLite and rendered as an HTML chart page or
// a PNG of joint angles.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"github.com/banshee-data/form.report/internal/pose/l6assessment"
	"github.com/banshee-data/form.report/internal/pose/pipeline"
	"github.com/banshee-data/form.report/internal/pose/report"
	"github.com/banshee-data/form.report/internal/pose/storage/sqlite"
	"github.com/banshee-data/form.report/internal/timeutil"
	"github.com/banshee-data/form.report/internal/version"
)

var (
	inputPath    = flag.String("input", "-", "JSONL file of detector frames (- for stdin)")
	exerciseType = flag.String("exercise", "squat", "Exercise type (squat, deadlift, benchPress, shoulderPress, pullUp, row, lunge, other)")
	trainingMode = flag.String("mode", "strength", "Training mode (strength, hypertrophy)")
	configPath   = flag.String("config", "", "Tuning config JSON (defaults built in)")
	dbPath       = flag.String("db", "", "SQLite database to record the session in")
	htmlPath     = flag.String("html", "", "Write an HTML chart report to this path")
	pngPath      = flag.String("png", "", "Write a joint-angle plot to this path")
	maxFPS       = flag.Float64("max-fps", -1, "Override max analysed frames per second of pose time (0 = unlimited, <0 = from config)")
	verbose      = flag.Bool("v", false, "Log pipeline diagnostics")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 1 << 20

// options configures one replay.
type options struct {
	Exercise exercise.Config
	Tuning   *config.TuningConfig
	MaxFPS   float64 // negative keeps the tuning value
	DBPath   string
	HTMLPath string
	PNGPath  string
	Title    string
	Clock    timeutil.Clock
}

// summary describes a finished replay.
type summary struct {
	SessionID   string
	Lines       int
	Malformed   int
	Stats       pipeline.RunnerStats
	Results     []pipeline.AnalysisResult
	MeanOverall float64
	Errors      map[l6assessment.ExerciseError]int
	Elapsed     time.Duration
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.SetPrefix("[replay] ")
	if *verbose {
		pipeline.SetLogWriters(os.Stderr, os.Stderr, nil)
	} else {
		pipeline.SetLogWriters(os.Stderr, nil, nil)
	}

	cfg, err := exercise.ParseConfig(*exerciseType, *trainingMode)
	if err != nil {
		log.Fatalf("invalid exercise: %v", err)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	in := io.Reader(os.Stdin)
	title := "stdin"
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer f.Close()
		in = f
		title = *inputPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := replay(ctx, in, options{
		Exercise: cfg,
		Tuning:   tuning,
		MaxFPS:   *maxFPS,
		DBPath:   *dbPath,
		HTMLPath: *htmlPath,
		PNGPath:  *pngPath,
		Title:    title,
		Clock:    timeutil.RealClock{},
	})
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	printSummary(os.Stdout, cfg, sum)
}

// replay feeds every frame read from in through a Runner and writes the
// requested outputs.
func replay(ctx context.Context, in io.Reader, o options) (*summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.Tuning == nil {
		o.Tuning = config.EmptyTuningConfig()
	}
	if o.Clock == nil {
		o.Clock = timeutil.RealClock{}
	}
	start := o.Clock.Now()
	sum := &summary{}

	var storeSink *sqlite.SessionSink
	if o.DBPath != "" {
		store, err := sqlite.Open(o.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		sum.SessionID, err = store.StartSession(o.Exercise)
		if err != nil {
			return nil, err
		}
		storeSink = store.Sink(sum.SessionID)
		log.Printf("recording session %s to %s", sum.SessionID, o.DBPath)
	}

	// The runner delivers on its own goroutine; results is read only after
	// Run has returned.
	sink := pipeline.ResultSinkFunc(func(r pipeline.AnalysisResult) {
		sum.Results = append(sum.Results, r)
		if storeSink != nil {
			storeSink.HandleResult(r)
		}
	})

	rcfg := pipeline.RunnerConfigFromTuning(o.Tuning)
	if o.MaxFPS >= 0 {
		rcfg.MaxFrameRate = o.MaxFPS
	}
	runner := pipeline.NewRunner(pipeline.NewAnalyzer(o.Tuning), sink, rcfg)

	runErr := make(chan error, 1)
	go func() { runErr <- runner.Run(ctx) }()

	feedErr := feed(ctx, in, runner, o.Exercise, sum)
	runner.Close()
	if err := <-runErr; err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	if feedErr != nil {
		return nil, feedErr
	}
	if storeSink != nil && storeSink.Err() != nil {
		return nil, fmt.Errorf("record results: %w", storeSink.Err())
	}

	sum.Stats = runner.Stats()
	sum.Errors = report.ErrorCounts(sum.Results)
	if len(sum.Results) > 0 {
		overall := make([]float64, len(sum.Results))
		for i, r := range sum.Results {
			overall[i] = r.Overall()
		}
		sum.MeanOverall = stat.Mean(overall, nil)
	}

	if err := writeOutputs(o, sum.Results); err != nil {
		return nil, err
	}
	sum.Elapsed = o.Clock.Since(start)
	return sum, nil
}

// feed decodes JSONL frames and submits them in file order. Blank lines are
// skipped; malformed lines are logged and counted.
func feed(ctx context.Context, in io.Reader, runner *pipeline.Runner, cfg exercise.Config, sum *summary) error {
	if err := runner.Configure(ctx, cfg); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		sum.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		frame, err := l1keypoints.DecodeFrame([]byte(line))
		if err != nil {
			sum.Malformed++
			log.Printf("line %d: %v", sum.Lines, err)
			continue
		}
		if err := runner.SubmitWait(ctx, frame); err != nil {
			return fmt.Errorf("submit line %d: %w", sum.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func writeOutputs(o options, results []pipeline.AnalysisResult) error {
	if len(results) == 0 {
		if o.HTMLPath != "" || o.PNGPath != "" {
			log.Printf("no results, skipping reports")
		}
		return nil
	}
	if o.HTMLPath != "" {
		f, err := os.Create(o.HTMLPath)
		if err != nil {
			return fmt.Errorf("create html report: %w", err)
		}
		werr := report.WriteHTML(f, o.Title, results)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("write html report: %w", werr)
		}
		log.Printf("wrote %s", o.HTMLPath)
	}
	if o.PNGPath != "" {
		if err := report.SaveAnglePlot(o.PNGPath, results); err != nil {
			return err
		}
		log.Printf("wrote %s", o.PNGPath)
	}
	return nil
}

func printSummary(w io.Writer, cfg exercise.Config, s *summary) {
	fmt.Fprintf(w, "exercise:   %s\n", cfg)
	fmt.Fprintf(w, "profile:    %s\n", pipeline.ProfileFor(cfg.Type))
	if s.SessionID != "" {
		fmt.Fprintf(w, "session:    %s\n", s.SessionID)
	}
	fmt.Fprintf(w, "lines:      %d (%d malformed)\n", s.Lines, s.Malformed)
	fmt.Fprintf(w, "frames:     submitted=%d processed=%d out_of_order=%d throttled=%d\n",
		s.Stats.Submitted, s.Stats.Processed, s.Stats.OutOfOrder, s.Stats.Throttled)
	fmt.Fprintf(w, "quality:    %.3f mean overall\n", s.MeanOverall)

	if len(s.Errors) == 0 {
		fmt.Fprintln(w, "errors:     none")
	} else {
		codes := make([]l6assessment.ExerciseError, 0, len(s.Errors))
		for code := range s.Errors {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		fmt.Fprintln(w, "errors:")
		for _, code := range codes {
			fmt.Fprintf(w, "  %-20s %4d frames  %s\n", code, s.Errors[code], code.Description())
		}
	}
	fmt.Fprintf(w, "elapsed:    %s\n", s.Elapsed.Round(time.Millisecond))
}
