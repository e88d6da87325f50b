package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
)

// ErrRunnerClosed is returned when work is sent to a Runner that is closed
// or whose Run loop has exited.
var ErrRunnerClosed = errors.New("pipeline: runner closed")

// ResultSink receives analysis results on the runner's consumer goroutine.
type ResultSink interface {
	HandleResult(AnalysisResult)
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(AnalysisResult)

// HandleResult calls f(r).
func (f ResultSinkFunc) HandleResult(r AnalysisResult) { f(r) }

// RunnerConfig holds queueing parameters.
type RunnerConfig struct {
	// QueueSize bounds the number of pending frames. Submit drops frames
	// once it is full.
	QueueSize int

	// MaxFrameRate caps how many frames per second of pose time are
	// analysed. Frames arriving sooner than 1/MaxFrameRate after the last
	// analysed frame are dropped. Zero means no limit.
	MaxFrameRate float64
}

// DefaultRunnerConfig returns the built-in runner configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfigFromTuning(config.EmptyTuningConfig())
}

// RunnerConfigFromTuning builds a RunnerConfig from a loaded TuningConfig.
func RunnerConfigFromTuning(cfg *config.TuningConfig) RunnerConfig {
	return RunnerConfig{
		QueueSize:    cfg.GetRunnerQueueSize(),
		MaxFrameRate: cfg.GetMaxFrameRate(),
	}
}

// RunnerStats counts what happened to submitted frames.
type RunnerStats struct {
	Submitted  uint64 // accepted into the queue
	Processed  uint64 // analysed and delivered to the sink
	Dropped    uint64 // rejected because the queue was full or closed
	OutOfOrder uint64 // discarded for a non-increasing timestamp
	Throttled  uint64 // discarded by MaxFrameRate
}

// request is one unit of serialized work: a frame to analyse or a
// configuration to apply.
type request struct {
	frame *l1keypoints.Frame
	cfg   *exercise.Config
}

// Runner feeds an Analyzer from a bounded queue drained by a single
// goroutine, so producers on any goroutine never process frames
// concurrently or out of order.
type Runner struct {
	analyzer *Analyzer
	sink     ResultSink
	cfg      RunnerConfig
	queue    chan request

	closeMu sync.RWMutex
	closed  bool

	// done is closed when Run returns so blocked producers give up.
	done     chan struct{}
	doneOnce sync.Once

	submitted  atomic.Uint64
	processed  atomic.Uint64
	dropped    atomic.Uint64
	outOfOrder atomic.Uint64
	throttled  atomic.Uint64

	// Consumer-goroutine state.
	lastTimestamp float64
	hasLast       bool
}

// NewRunner creates a runner around an analyzer. A nil sink discards
// results.
func NewRunner(a *Analyzer, sink ResultSink, cfg RunnerConfig) *Runner {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if sink == nil {
		sink = ResultSinkFunc(func(AnalysisResult) {})
	}
	return &Runner{
		analyzer: a,
		sink:     sink,
		cfg:      cfg,
		queue:    make(chan request, cfg.QueueSize),
		done:     make(chan struct{}),
	}
}

// Submit enqueues a frame without blocking. It returns false when the frame
// was dropped because the queue is full or the runner is closed.
func (r *Runner) Submit(frame l1keypoints.Frame) bool {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return false
	}
	select {
	case r.queue <- request{frame: &frame}:
		r.submitted.Add(1)
		return true
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			opsf("queue full, dropped %d frames", n)
		}
		return false
	}
}

// SubmitWait enqueues a frame, blocking until there is room in the queue
// or ctx is done. Replays use it so that no frame is lost to backpressure.
// It returns ErrRunnerClosed once Run has exited, even if ctx is not done.
func (r *Runner) SubmitWait(ctx context.Context, frame l1keypoints.Frame) error {
	if err := r.enqueue(ctx, request{frame: &frame}); err != nil {
		return err
	}
	r.submitted.Add(1)
	return nil
}

// Configure enqueues a configuration change behind any pending frames. It
// blocks until there is room in the queue, ctx is done or Run has exited.
func (r *Runner) Configure(ctx context.Context, cfg exercise.Config) error {
	return r.enqueue(ctx, request{cfg: &cfg})
}

// enqueue waits under the read lock. Waiting on done releases it once Run
// exits so Close never blocks behind a stalled producer.
func (r *Runner) enqueue(ctx context.Context, req request) error {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return ErrRunnerClosed
	}
	select {
	case <-r.done:
		return ErrRunnerClosed
	default:
	}
	select {
	case r.queue <- req:
		return nil
	case <-r.done:
		return ErrRunnerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work. Run drains what is already queued and then
// returns nil.
func (r *Runner) Close() {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.queue)
}

// Run drains the queue on the calling goroutine until Close has been called
// and the queue is empty, or ctx is cancelled. Queued work is abandoned on
// cancellation.
func (r *Runner) Run(ctx context.Context) error {
	diagf("runner started (queue=%d max_fps=%.1f)", r.cfg.QueueSize, r.cfg.MaxFrameRate)
	defer r.doneOnce.Do(func() { close(r.done) })
	defer func() {
		s := r.Stats()
		diagf("runner stopped: processed=%d dropped=%d out_of_order=%d throttled=%d",
			s.Processed, s.Dropped, s.OutOfOrder, s.Throttled)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-r.queue:
			if !ok {
				return nil
			}
			r.handle(req)
		}
	}
}

func (r *Runner) handle(req request) {
	if req.cfg != nil {
		r.analyzer.Configure(*req.cfg)
		return
	}
	ts := req.frame.Timestamp
	if r.hasLast && ts <= r.lastTimestamp {
		r.outOfOrder.Add(1)
		tracef("dropped out-of-order frame t=%.3f (last %.3f)", ts, r.lastTimestamp)
		return
	}
	if r.cfg.MaxFrameRate > 0 && r.hasLast && ts-r.lastTimestamp < 1/r.cfg.MaxFrameRate {
		r.throttled.Add(1)
		return
	}
	r.lastTimestamp = ts
	r.hasLast = true

	result := r.analyzer.Ingest(*req.frame)
	r.processed.Add(1)
	r.sink.HandleResult(result)
}

// Stats returns a snapshot of the runner counters.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		Submitted:  r.submitted.Load(),
		Processed:  r.processed.Load(),
		Dropped:    r.dropped.Load(),
		OutOfOrder: r.outOfOrder.Load(),
		Throttled:  r.throttled.Load(),
	}
}
