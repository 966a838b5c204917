// Package session owns the per-assessment test state machine: which phase is
// active, the live sample/tap buffers, and the once-per-phase handoff to the
// analyzers at phase stop.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/config"
	"github.com/drelsherif/shaky/internal/metrics"
	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/signal"
)

// State is the controller's FSM tag. Analyzer dispatch at phase stop is
// keyed on this tag, never on a phase name string.
type State int

const (
	Idle State = iota
	TappingActive
	TremorActive
)

func (s State) String() string {
	switch s {
	case TappingActive:
		return "tapping-active"
	case TremorActive:
		return "tremor-active"
	default:
		return "idle"
	}
}

// ErrPhaseActive is returned when a phase start overlaps a running phase.
var ErrPhaseActive = errors.New("a test phase is already active")

// Result is the controller's sole output event. Exactly one of Tapping and
// Tremor is set, matching Kind.
type Result struct {
	Hand    models.Hand
	Kind    models.TestKind
	Tapping *models.TappingResult
	Tremor  *models.TremorResult
}

// ResultHandler consumes published phase results.
type ResultHandler func(result Result)

// Controller runs the fixed sequence of timed test phases for one
// assessment session. All methods are safe for concurrent use; sample and
// tap ingestion is O(1) and never triggers analysis, which runs exactly once
// at phase stop.
type Controller struct {
	mu  sync.Mutex
	log *zap.Logger
	cfg config.AssessmentConfig

	state     State
	hand      models.Hand
	duration  float64
	startedAt time.Time
	gen       int // phase generation, invalidates late timer fires
	timer     *time.Timer

	buffer *signal.SampleBuffer
	taps   []models.TapEvent

	record   *models.SessionRecord
	traces   map[string][]float64 // per completed phase magnitude series
	onResult ResultHandler

	lastActivity time.Time
}

// NewController creates an idle controller with a fresh session record.
func NewController(log *zap.Logger, cfg config.AssessmentConfig) *Controller {
	return &Controller{
		log:          log,
		cfg:          cfg,
		buffer:       signal.NewSampleBuffer(cfg.DisplayWindowSize),
		record:       &models.SessionRecord{},
		traces:       make(map[string][]float64),
		lastActivity: time.Now(),
	}
}

// SetResultHandler sets the callback invoked after each phase result is
// recorded. Must be set before the first phase starts.
func (c *Controller) SetResultHandler(handler ResultHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResult = handler
}

// StartPhase begins a timed phase. Both buffers are reset before any new
// sample can arrive. durationSeconds <= 0 selects the configured default for
// the kind. The phase stops itself when the timer elapses.
func (c *Controller) StartPhase(kind models.TestKind, hand models.Hand, durationSeconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return ErrPhaseActive
	}
	if hand != models.LeftHand && hand != models.RightHand {
		return fmt.Errorf("unknown hand %q", hand)
	}

	switch kind {
	case models.TappingTest:
		c.state = TappingActive
		if durationSeconds <= 0 {
			durationSeconds = c.cfg.TappingDurationSeconds
		}
	case models.TremorTest:
		c.state = TremorActive
		if durationSeconds <= 0 {
			durationSeconds = c.cfg.TremorDurationSeconds
		}
	default:
		return fmt.Errorf("unknown test kind %q", kind)
	}

	c.hand = hand
	c.duration = durationSeconds
	c.startedAt = time.Now()
	c.lastActivity = c.startedAt
	c.buffer.Reset()
	c.taps = c.taps[:0]

	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(time.Duration(durationSeconds*float64(time.Second)), func() {
		c.expire(gen)
	})

	c.log.Info("Test phase started",
		zap.String("kind", string(kind)),
		zap.String("hand", string(hand)),
		zap.Float64("duration_s", durationSeconds),
	)
	return nil
}

// expire is the timer path into the phase stop. The generation check and
// the stop itself share one lock acquisition; a stale timer racing an
// explicit stop and restart can never reach the new phase.
func (c *Controller) expire(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.finishPhaseLocked()
}

// StopPhase deterministically closes the active phase: ingestion halts, the
// sample set is snapshotted, the matching analyzer runs synchronously, and
// the result is published. No-op when idle.
func (c *Controller) StopPhase() {
	c.mu.Lock()
	c.finishPhaseLocked()
}

// finishPhaseLocked is the single stop path. Called with c.mu held;
// releases it before the result handler runs.
func (c *Controller) finishPhaseLocked() {
	if c.state == Idle {
		c.mu.Unlock()
		return
	}

	state := c.state
	hand := c.hand
	samples := c.buffer.Snapshot()
	taps := make([]models.TapEvent, len(c.taps))
	copy(taps, c.taps)

	// Halt ingestion before analysis; a stray in-flight sample from this
	// phase now counts as out-of-sequence and is dropped.
	c.state = Idle
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.lastActivity = time.Now()

	var result Result
	switch state {
	case TappingActive:
		tapping := metrics.AnalyzeTapping(hand, taps, metrics.TappingConfig{
			DurationSeconds:   c.duration,
			PeakWindowSeconds: c.cfg.PeakWindowSeconds,
			FrequencyWeight:   c.cfg.FrequencyWeight,
			ConsistencyWeight: c.cfg.ConsistencyWeight,
			PeakWeight:        c.cfg.PeakWeight,
			FatigueWeight:     c.cfg.FatigueWeight,
		})
		result = Result{Hand: hand, Kind: models.TappingTest, Tapping: tapping}
	case TremorActive:
		tremor := metrics.AnalyzeTremor(hand, samples, metrics.TremorConfig{
			SamplingRateHz:      c.cfg.SamplingRateHz,
			MinSamples:          c.cfg.MinTremorSamples,
			MinFrequencySamples: c.cfg.MinFrequencySamples,
			MinPeakDistance:     c.cfg.MinPeakDistance,
		})
		result = Result{Hand: hand, Kind: models.TremorTest, Tremor: tremor}
	}

	recorded := c.recordResultLocked(result)
	if recorded {
		trace := make([]float64, len(samples))
		for i, s := range samples {
			trace[i] = s.Magnitude
		}
		c.traces[traceKey(hand, result.Kind)] = trace
	}

	handler := c.onResult
	c.mu.Unlock()

	c.log.Info("Test phase stopped",
		zap.String("kind", string(result.Kind)),
		zap.String("hand", string(hand)),
		zap.Int("samples", len(samples)),
		zap.Int("taps", len(taps)),
		zap.Bool("recorded", recorded),
	)

	if recorded && handler != nil {
		handler(result)
	}
}

// recordResultLocked writes a phase result into the session record. Each
// (hand, kind) slot is written once per session; a repeat is dropped.
func (c *Controller) recordResultLocked(result Result) bool {
	switch {
	case result.Kind == models.TappingTest && result.Hand == models.LeftHand:
		if c.record.LeftTapping != nil {
			break
		}
		c.record.LeftTapping = result.Tapping
		return true
	case result.Kind == models.TappingTest && result.Hand == models.RightHand:
		if c.record.RightTapping != nil {
			break
		}
		c.record.RightTapping = result.Tapping
		return true
	case result.Kind == models.TremorTest && result.Hand == models.LeftHand:
		if c.record.LeftTremor != nil {
			break
		}
		c.record.LeftTremor = result.Tremor
		return true
	case result.Kind == models.TremorTest && result.Hand == models.RightHand:
		if c.record.RightTremor != nil {
			break
		}
		c.record.RightTremor = result.Tremor
		return true
	}
	c.log.Warn("Dropping repeat result for already-recorded phase",
		zap.String("kind", string(result.Kind)),
		zap.String("hand", string(result.Hand)),
	)
	return false
}

// OnMotionSample ingests one sensor sample. Samples arriving while no phase
// is active are dropped silently.
func (c *Controller) OnMotionSample(sample models.MotionSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}
	c.buffer.Append(sample)
	c.lastActivity = time.Now()
}

// OnTap records one tap action. Taps outside an active tapping phase are
// dropped silently.
func (c *Controller) OnTap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TappingActive {
		return
	}
	c.taps = append(c.taps, models.TapEvent{
		ElapsedSeconds: time.Since(c.startedAt).Seconds(),
	})
	c.lastActivity = time.Now()
}

// CurrentState returns the current FSM tag plus the active hand.
func (c *Controller) CurrentState() (State, models.Hand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hand
}

// LiveWindow returns up to n recent display samples. Display only; the
// analyzers never consult this projection.
func (c *Controller) LiveWindow(n int) []models.MotionSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.RecentWindow(n)
}

// Record returns a copy of the session record.
func (c *Controller) Record() models.SessionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.record
}

// Summary returns the session record plus the derived bilateral metrics.
func (c *Controller) Summary() *models.SessionSummary {
	c.mu.Lock()
	record := *c.record
	cfg := metrics.ScorerConfig{
		FrequencyAsymmetryHz: c.cfg.FrequencyAsymmetryHz,
		AmplitudeAsymmetryG:  c.cfg.AmplitudeAsymmetryG,
	}
	c.mu.Unlock()

	return metrics.Summarize(&record, cfg)
}

// Trace returns the magnitude series of a completed phase, nil if the phase
// has not run. Used by the chart renderer.
func (c *Controller) Trace(hand models.Hand, kind models.TestKind) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	trace, ok := c.traces[traceKey(hand, kind)]
	if !ok {
		return nil
	}
	out := make([]float64, len(trace))
	copy(out, trace)
	return out
}

// Reset abandons any active phase and clears the session record.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Idle
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.buffer.Reset()
	c.taps = c.taps[:0]
	c.record = &models.SessionRecord{}
	c.traces = make(map[string][]float64)
	c.lastActivity = time.Now()
}

// LastActivity reports the time of the most recent event on this session.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func traceKey(hand models.Hand, kind models.TestKind) string {
	return string(hand) + "/" + string(kind)
}
