package metrics

import (
	"math"
	"time"

	"github.com/drelsherif/shaky/internal/models"
)

// TappingConfig holds the tunables of the tapping analyzer. Zero values are
// replaced by the documented defaults so a partially filled config stays
// usable in tests.
type TappingConfig struct {
	// DurationSeconds is the fixed test duration D.
	DurationSeconds float64
	// PeakWindowSeconds is the sliding-window size for peak frequency.
	PeakWindowSeconds float64
	// Score weights. Must sum to 1 for the score to span 0-100.
	FrequencyWeight   float64
	ConsistencyWeight float64
	PeakWeight        float64
	FatigueWeight     float64
}

// DefaultTappingConfig is the canonical 20-second weighted-five-factor
// configuration.
func DefaultTappingConfig() TappingConfig {
	return TappingConfig{
		DurationSeconds:   20,
		PeakWindowSeconds: 3,
		FrequencyWeight:   0.30,
		ConsistencyWeight: 0.25,
		PeakWeight:        0.25,
		FatigueWeight:     0.20,
	}
}

func (c TappingConfig) withDefaults() TappingConfig {
	def := DefaultTappingConfig()
	if c.DurationSeconds <= 0 {
		c.DurationSeconds = def.DurationSeconds
	}
	if c.PeakWindowSeconds <= 0 {
		c.PeakWindowSeconds = def.PeakWindowSeconds
	}
	if c.FrequencyWeight+c.ConsistencyWeight+c.PeakWeight+c.FatigueWeight == 0 {
		c.FrequencyWeight = def.FrequencyWeight
		c.ConsistencyWeight = def.ConsistencyWeight
		c.PeakWeight = def.PeakWeight
		c.FatigueWeight = def.FatigueWeight
	}
	return c
}

// AnalyzeTapping computes the full tapping result for one completed phase.
// taps must be ordered by elapsed time. Zero taps yield a zeroed result with
// the Severe Impairment grade.
func AnalyzeTapping(hand models.Hand, taps []models.TapEvent, cfg TappingConfig) *models.TappingResult {
	cfg = cfg.withDefaults()

	result := &models.TappingResult{
		Hand:      hand,
		TapCount:  len(taps),
		Grade:     models.GradeSevere,
		CreatedAt: time.Now(),
	}
	if len(taps) == 0 {
		return result
	}

	times := make([]float64, len(taps))
	for i, tap := range taps {
		times[i] = tap.ElapsedSeconds
	}

	result.AverageFrequency = float64(len(times)) / cfg.DurationSeconds

	// Consistency and rhythm stability share the interval-variance
	// computation but stay separate fields so callers can weight them
	// independently.
	consistency := intervalConsistency(times)
	result.Consistency = consistency
	result.RhythmStability = consistency

	peakFreq, peakIdx := peakTapFrequency(times, cfg.PeakWindowSeconds)
	result.PeakFrequency = peakFreq
	if peakIdx >= 0 {
		result.AccelerationPhase = times[peakIdx]
		result.DecelerationPhase = math.Max(0, cfg.DurationSeconds-times[peakIdx])
	}

	result.FatigueIndex = fatigueIndex(times)

	result.Score = tappingScore(result, cfg)
	result.Grade = gradeFromScore(result.Score)
	return result
}

// intervalConsistency is the coefficient-of-variation based measure over
// consecutive inter-tap intervals, clamped to [0,1]. Fewer than 2 taps
// carry no interval information and yield 0.
func intervalConsistency(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}

	intervals := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals = append(intervals, times[i]-times[i-1])
	}

	avg := mean(intervals)
	if avg <= 0 {
		return 0
	}
	return clamp(1-stdDev(intervals, avg)/avg, 0, 1)
}

// peakTapFrequency slides a fixed window across the tap times and returns
// the highest local rate plus the index of the tap opening the best window.
// A window only counts if it holds more than one tap. Returns (0, -1) when
// no window qualifies.
func peakTapFrequency(times []float64, windowSeconds float64) (float64, int) {
	best := 0.0
	bestIdx := -1

	for i, start := range times {
		count := 0
		for _, t := range times[i:] {
			if t-start >= windowSeconds {
				break
			}
			count++
		}
		if count <= 1 {
			continue
		}
		freq := float64(count) / windowSeconds
		if freq > best {
			best = freq
			bestIdx = i
		}
	}

	return best, bestIdx
}

// fatigueIndex compares tapping frequency in the first and last third of the
// session (split by count). Undefined cases resolve to 0.
func fatigueIndex(times []float64) float64 {
	third := len(times) / 3
	if third < 2 {
		return 0
	}

	first := times[:third]
	last := times[len(times)-third:]

	firstDur := first[len(first)-1] - first[0]
	lastDur := last[len(last)-1] - last[0]
	if firstDur <= 0 || lastDur <= 0 {
		return 0
	}

	firstFreq := float64(third-1) / firstDur
	lastFreq := float64(third-1) / lastDur
	if firstFreq <= 0 {
		return 0
	}

	return clamp((firstFreq-lastFreq)/firstFreq, 0, 1)
}

// tappingScore is the weighted composite over the four factor scores.
func tappingScore(r *models.TappingResult, cfg TappingConfig) float64 {
	freqScore := math.Min(100, r.AverageFrequency*12)
	consistencyScore := r.Consistency * 100
	peakScore := math.Min(100, r.PeakFrequency*8)
	fatigueScore := math.Max(0, (1-r.FatigueIndex)*100)

	score := cfg.FrequencyWeight*freqScore +
		cfg.ConsistencyWeight*consistencyScore +
		cfg.PeakWeight*peakScore +
		cfg.FatigueWeight*fatigueScore
	return clamp(score, 0, 100)
}

func gradeFromScore(score float64) models.Grade {
	switch {
	case score >= 70:
		return models.GradeNormal
	case score >= 50:
		return models.GradeMild
	case score >= 30:
		return models.GradeModerate
	case score >= 15:
		return models.GradeSignificant
	default:
		return models.GradeSevere
	}
}
