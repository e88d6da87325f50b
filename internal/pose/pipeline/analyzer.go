package pipeline

import (
	"sync"

	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l1keypoints"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l3history"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"github.com/banshee-data/form.report/internal/pose/l6assessment"
)

// State is the analyzer lifecycle state.
type State string

const (
	// Idle until the first Configure, and again after Reset.
	Idle   State = "idle"
	Active State = "active"
)

// AnalysisResult is the per-frame output. The analyzer keeps no reference to
// any part of it once returned.
type AnalysisResult struct {
	Pose             *l2geometry.BodyPose         `json:"pose"`
	MuscleActivation l5activation.Activation      `json:"muscle_activation"`
	Phase            l4phase.Phase                `json:"phase"`
	Quality          l6assessment.ExerciseQuality `json:"quality"`
	Errors           []l6assessment.ExerciseError `json:"errors"`
	Timestamp        float64                      `json:"timestamp"`
	Exercise         exercise.Config              `json:"exercise"`
}

// Overall returns the quality score for the training mode the result was
// produced under.
func (r AnalysisResult) Overall() float64 {
	return r.Quality.Overall(r.Exercise.Mode)
}

// HasError reports whether the result flagged the given error code.
func (r AnalysisResult) HasError(code l6assessment.ExerciseError) bool {
	for _, e := range r.Errors {
		if e == code {
			return true
		}
	}
	return false
}

// Analyzer runs every layer over each incoming frame. All methods are safe
// for concurrent use; Ingest and Configure hold one mutex for their full
// duration so no frame observes a half-applied configuration.
type Analyzer struct {
	mu sync.Mutex

	cfg     exercise.Config
	profile Profile
	state   State
	history *l3history.History

	computer   *l2geometry.Computer
	classifier *l4phase.Classifier
	estimator  *l5activation.Estimator
	evaluator  *l6assessment.Evaluator
	detector   *l6assessment.Detector

	lastTimestamp float64
	hasLast       bool
}

// NewAnalyzer creates an idle analyzer. A nil tuning config uses the
// built-in defaults.
func NewAnalyzer(tuning *config.TuningConfig) *Analyzer {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	assessCfg := l6assessment.ConfigFromTuning(tuning)
	cfg := exercise.DefaultConfig()
	return &Analyzer{
		cfg:        cfg,
		profile:    ProfileFor(cfg.Type),
		state:      Idle,
		history:    l3history.NewHistoryFromTuning(tuning),
		computer:   l2geometry.NewComputer(l2geometry.ConfigFromTuning(tuning)),
		classifier: l4phase.NewClassifier(l4phase.ConfigFromTuning(tuning)),
		estimator:  l5activation.NewEstimator(),
		evaluator:  l6assessment.NewEvaluator(assessCfg),
		detector:   l6assessment.NewDetector(assessCfg),
	}
}

// Configure sets the active exercise and training mode and moves the
// analyzer to Active. Changing the exercise type clears the history;
// changing only the mode keeps it.
func (a *Analyzer) Configure(cfg exercise.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cfg.Type != a.cfg.Type {
		a.clearLocked()
		a.profile = ProfileFor(cfg.Type)
		diagf("exercise changed %s -> %s, history cleared (%s)", a.cfg.Type, cfg.Type, a.profile)
	} else if cfg.Mode != a.cfg.Mode {
		diagf("training mode changed %s -> %s", a.cfg.Mode, cfg.Mode)
	}
	a.cfg = cfg
	a.state = Active
}

// Reset clears the history and returns to Idle with the default
// configuration.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()
	a.cfg = exercise.DefaultConfig()
	a.profile = ProfileFor(a.cfg.Type)
	a.state = Idle
	diagf("analyzer reset")
}

// State returns the lifecycle state.
func (a *Analyzer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Config returns the active exercise configuration.
func (a *Analyzer) Config() exercise.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// HistoryLen returns the number of buffered poses.
func (a *Analyzer) HistoryLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Len()
}

// Ingest analyses one detector frame and returns its result. It never
// fails: missing keypoints, shallow history, and unsupported exercises all
// degrade to neutral output. A frame whose timestamp goes backwards starts a
// fresh history.
func (a *Analyzer) Ingest(frame l1keypoints.Frame) AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	pose := a.computer.Compute(frame)
	if a.hasLast && pose.Timestamp < a.lastTimestamp {
		opsf("timestamp went backwards (%.3f < %.3f), history cleared", pose.Timestamp, a.lastTimestamp)
		a.history.Clear()
	}
	a.lastTimestamp = pose.Timestamp
	a.hasLast = true
	a.history.Push(pose)

	t := a.cfg.Type
	phase := a.classifier.Classify(t, a.history)
	act := a.estimator.Estimate(t, pose, phase, a.cfg.Mode)
	quality := a.evaluator.Evaluate(t, a.history, act)
	errs := a.detector.DetectWith(a.profile.Rules, pose)

	tracef("t=%.3f %s phase=%s muscles=%d errors=%v", pose.Timestamp, t, phase, len(act), errs)

	return AnalysisResult{
		Pose:             pose.Clone(),
		MuscleActivation: act,
		Phase:            phase,
		Quality:          quality,
		Errors:           errs,
		Timestamp:        pose.Timestamp,
		Exercise:         a.cfg,
	}
}

func (a *Analyzer) clearLocked() {
	a.history.Clear()
	a.hasLast = false
	a.lastTimestamp = 0
}
