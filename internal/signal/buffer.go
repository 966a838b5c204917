// Package signal holds the sample-stream primitives shared by the analyzers:
// the per-phase sample buffer and the frequency estimators.
package signal

import "github.com/drelsherif/shaky/internal/models"

// SampleBuffer collects the motion samples of one active test phase. It owns
// two containers: an unbounded append-only log consumed by the analyzers at
// phase stop, and a capped recent window used only for live display. Both are
// cleared together by Reset.
type SampleBuffer struct {
	samples []models.MotionSample
	display []models.MotionSample
	cap     int
}

// NewSampleBuffer creates a buffer whose display projection keeps at most
// displayCap samples. A displayCap <= 0 disables the display window.
func NewSampleBuffer(displayCap int) *SampleBuffer {
	return &SampleBuffer{
		samples: make([]models.MotionSample, 0, 256),
		display: make([]models.MotionSample, 0, displayCap),
		cap:     displayCap,
	}
}

// Append adds a sample to the end of the analysis log and the display
// window. O(1) amortized; never triggers analysis.
func (b *SampleBuffer) Append(sample models.MotionSample) {
	b.samples = append(b.samples, sample)

	if b.cap <= 0 {
		return
	}
	b.display = append(b.display, sample)
	if len(b.display) > b.cap {
		b.display = b.display[1:]
	}
}

// Len returns the number of samples captured since the last Reset.
func (b *SampleBuffer) Len() int {
	return len(b.samples)
}

// Snapshot returns a copy of the full ordered sample log captured since the
// last Reset. Display-only truncation never affects this sequence.
func (b *SampleBuffer) Snapshot() []models.MotionSample {
	out := make([]models.MotionSample, len(b.samples))
	copy(out, b.samples)
	return out
}

// RecentWindow returns up to n of the most recent display samples.
func (b *SampleBuffer) RecentWindow(n int) []models.MotionSample {
	if n > len(b.display) {
		n = len(b.display)
	}
	out := make([]models.MotionSample, n)
	copy(out, b.display[len(b.display)-n:])
	return out
}

// Reset clears both containers for a new phase.
func (b *SampleBuffer) Reset() {
	b.samples = b.samples[:0]
	b.display = b.display[:0]
}
