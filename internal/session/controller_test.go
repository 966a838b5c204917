package session

import (
	"testing"

	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/config"
	"github.com/drelsherif/shaky/internal/models"
)

func testAssessmentConfig() config.AssessmentConfig {
	return config.AssessmentConfig{
		TappingDurationSeconds: 20,
		TremorDurationSeconds:  10,
		SamplingRateHz:         50,
		PeakWindowSeconds:      3,
		MinPeakDistance:        5,
		MinFrequencySamples:    20,
		MinTremorSamples:       10,
		DisplayWindowSize:      100,
		FrequencyWeight:        0.30,
		ConsistencyWeight:      0.25,
		PeakWeight:             0.25,
		FatigueWeight:          0.20,
		FrequencyAsymmetryHz:   1.5,
		AmplitudeAsymmetryG:    0.03,
	}
}

func newTestController() *Controller {
	return NewController(zap.NewNop(), testAssessmentConfig())
}

func feedSamples(c *Controller, n int, amplitude float64) {
	for i := 0; i < n; i++ {
		c.OnMotionSample(models.NewMotionSample(amplitude, 0, 0, nil, int64(i*20)))
	}
}

func TestController_TappingPhaseFlow(t *testing.T) {
	c := newTestController()

	if state, _ := c.CurrentState(); state != Idle {
		t.Fatalf("state=%v, want Idle before first phase", state)
	}

	// Long duration so the timer never fires during the test; stop explicitly.
	if err := c.StartPhase(models.TappingTest, models.RightHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	if state, hand := c.CurrentState(); state != TappingActive || hand != models.RightHand {
		t.Fatalf("state=%v hand=%q, want tapping-active right", state, hand)
	}

	for i := 0; i < 40; i++ {
		c.OnTap()
	}
	c.StopPhase()

	if state, _ := c.CurrentState(); state != Idle {
		t.Fatalf("state=%v, want Idle after stop", state)
	}
	record := c.Record()
	if record.RightTapping == nil {
		t.Fatalf("right tapping result not recorded")
	}
	if record.RightTapping.TapCount != 40 {
		t.Fatalf("tapCount=%d, want 40", record.RightTapping.TapCount)
	}
	if record.LeftTapping != nil || record.LeftTremor != nil || record.RightTremor != nil {
		t.Fatalf("unexpected results recorded: %+v", record)
	}
}

func TestController_TremorPhasePublishesResult(t *testing.T) {
	c := newTestController()

	var published []Result
	c.SetResultHandler(func(r Result) { published = append(published, r) })

	if err := c.StartPhase(models.TremorTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	feedSamples(c, 200, 0.05)
	c.StopPhase()

	if len(published) != 1 {
		t.Fatalf("published %d results, want 1", len(published))
	}
	r := published[0]
	if r.Kind != models.TremorTest || r.Hand != models.LeftHand {
		t.Fatalf("published kind=%q hand=%q, want tremor left", r.Kind, r.Hand)
	}
	if r.Tremor == nil || r.Tapping != nil {
		t.Fatalf("result payload mismatched for kind: %+v", r)
	}
	if trace := c.Trace(models.LeftHand, models.TremorTest); len(trace) != 200 {
		t.Fatalf("trace length=%d, want 200", len(trace))
	}
}

func TestController_OutOfSequenceInputDropped(t *testing.T) {
	c := newTestController()

	// Idle: both kinds of input are dropped.
	c.OnTap()
	feedSamples(c, 10, 0.05)

	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	c.OnTap()
	c.OnTap()
	c.StopPhase()

	// Late arrivals after stop must not resurrect the phase.
	c.OnTap()
	feedSamples(c, 10, 0.05)

	record := c.Record()
	if record.LeftTapping == nil {
		t.Fatalf("left tapping result not recorded")
	}
	if record.LeftTapping.TapCount != 2 {
		t.Fatalf("tapCount=%d, want 2 (pre-phase and post-phase taps dropped)", record.LeftTapping.TapCount)
	}
	if window := c.LiveWindow(100); len(window) != 0 {
		t.Fatalf("live window has %d samples after idle-phase feed, want 0", len(window))
	}
}

func TestController_RejectsOverlappingPhase(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	if err := c.StartPhase(models.TremorTest, models.RightHand, 3600); err != ErrPhaseActive {
		t.Fatalf("overlapping start err=%v, want ErrPhaseActive", err)
	}
	c.StopPhase()

	if err := c.StartPhase(models.TremorTest, models.RightHand, 3600); err != nil {
		t.Fatalf("StartPhase after stop: %v", err)
	}
	c.StopPhase()
}

func TestController_RejectsBadPhaseArguments(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TappingTest, models.UnknownHand, 3600); err == nil {
		t.Fatalf("expected error for unknown hand")
	}
	if err := c.StartPhase(models.TestKind("juggling"), models.LeftHand, 3600); err == nil {
		t.Fatalf("expected error for unknown test kind")
	}
	if state, _ := c.CurrentState(); state != Idle {
		t.Fatalf("state=%v, want Idle after rejected starts", state)
	}
}

func TestController_ResultSlotsWriteOnce(t *testing.T) {
	c := newTestController()

	var published int
	c.SetResultHandler(func(Result) { published++ })

	run := func(taps int) {
		if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
			t.Fatalf("StartPhase: %v", err)
		}
		for i := 0; i < taps; i++ {
			c.OnTap()
		}
		c.StopPhase()
	}

	run(30)
	first := c.Record().LeftTapping
	run(5)

	record := c.Record()
	if record.LeftTapping.TapCount != first.TapCount {
		t.Fatalf("repeat phase overwrote slot: tapCount=%d, want %d", record.LeftTapping.TapCount, first.TapCount)
	}
	if published != 1 {
		t.Fatalf("published %d results, want 1 (repeat not published)", published)
	}
}

func TestController_LiveWindow(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TremorTest, models.RightHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	feedSamples(c, 250, 0.05)

	window := c.LiveWindow(50)
	if len(window) != 50 {
		t.Fatalf("live window length=%d, want 50", len(window))
	}
	// Display buffer is capped; asking past the cap returns the cap.
	if window = c.LiveWindow(500); len(window) != testAssessmentConfig().DisplayWindowSize {
		t.Fatalf("live window length=%d, want display cap %d", len(window), testAssessmentConfig().DisplayWindowSize)
	}
	c.StopPhase()

	// The full snapshot still reached the analyzer despite the display cap.
	if trace := c.Trace(models.RightHand, models.TremorTest); len(trace) != 250 {
		t.Fatalf("trace length=%d, want 250", len(trace))
	}
}

func TestController_Reset(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	c.OnTap()
	c.StopPhase()
	if c.Record().LeftTapping == nil {
		t.Fatalf("result not recorded before reset")
	}

	c.Reset()

	record := c.Record()
	if record.LeftTapping != nil || record.RightTapping != nil || record.LeftTremor != nil || record.RightTremor != nil {
		t.Fatalf("record not cleared by reset: %+v", record)
	}
	if trace := c.Trace(models.LeftHand, models.TappingTest); trace != nil {
		t.Fatalf("trace survived reset")
	}

	// Controller is reusable after reset.
	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase after reset: %v", err)
	}
	c.OnTap()
	c.StopPhase()
	if c.Record().LeftTapping == nil {
		t.Fatalf("result not recorded after reset")
	}
}

func TestController_ResetAbandonsActivePhase(t *testing.T) {
	c := newTestController()

	var published int
	c.SetResultHandler(func(Result) { published++ })

	if err := c.StartPhase(models.TremorTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	feedSamples(c, 100, 0.05)
	c.Reset()

	if state, _ := c.CurrentState(); state != Idle {
		t.Fatalf("state=%v, want Idle after reset", state)
	}
	if published != 0 {
		t.Fatalf("abandoned phase published a result")
	}
	if c.Record().LeftTremor != nil {
		t.Fatalf("abandoned phase recorded a result")
	}
}

func TestController_StaleExpiryDoesNotTouchNextPhase(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	c.mu.Lock()
	staleGen := c.gen
	c.mu.Unlock()
	c.StopPhase()

	if err := c.StartPhase(models.TremorTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	feedSamples(c, 30, 0.05)

	// The first phase's timer firing after its explicit stop.
	c.expire(staleGen)

	if state, _ := c.CurrentState(); state != TremorActive {
		t.Fatalf("state=%v, want tremor-active after stale expiry", state)
	}
	if c.Record().LeftTremor != nil {
		t.Fatalf("stale expiry stopped the new phase and recorded its result")
	}

	// The live generation still expires the phase normally.
	c.mu.Lock()
	liveGen := c.gen
	c.mu.Unlock()
	c.expire(liveGen)

	if state, _ := c.CurrentState(); state != Idle {
		t.Fatalf("state=%v, want Idle after live expiry", state)
	}
	if c.Record().LeftTremor == nil {
		t.Fatalf("live expiry did not record the phase result")
	}
}

func TestController_SummaryFromPartialRecord(t *testing.T) {
	c := newTestController()

	if err := c.StartPhase(models.TappingTest, models.LeftHand, 3600); err != nil {
		t.Fatalf("StartPhase: %v", err)
	}
	for i := 0; i < 30; i++ {
		c.OnTap()
	}
	c.StopPhase()

	summary := c.Summary()
	if summary.OverallStatus != models.StatusIncomplete {
		t.Fatalf("overallStatus=%q, want Incomplete with one phase done", summary.OverallStatus)
	}
	if summary.Comparison != nil {
		t.Fatalf("comparison=%+v, want nil for incomplete record", summary.Comparison)
	}
}
