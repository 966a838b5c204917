package metrics

import (
	"time"

	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/signal"
)

// Severity cut-points on mean tremor amplitude (g). Exported so deployments
// can retune the buckets without touching the analyzer.
var (
	SeverityMinimalThreshold    = 0.02
	SeverityMildThreshold       = 0.04
	SeverityModerateThreshold   = 0.08
	SeveritySevereThreshold     = 0.15
	SeverityVerySevereThreshold = 0.25
)

// TremorConfig holds the tunables of the tremor analyzer.
type TremorConfig struct {
	// SamplingRateHz converts the sample count into an elapsed duration
	// for frequency estimation.
	SamplingRateHz float64
	// MinSamples below which the phase yields an all-zero "None" result.
	MinSamples int
	// MinFrequencySamples is the zero-crossing estimator's floor.
	MinFrequencySamples int
	// MinPeakDistance spaces peaks in the fallback peak-count estimator.
	MinPeakDistance int
}

// DefaultTremorConfig returns the documented defaults (50 Hz, 10, 20, 5).
func DefaultTremorConfig() TremorConfig {
	return TremorConfig{
		SamplingRateHz:      50,
		MinSamples:          10,
		MinFrequencySamples: 20,
		MinPeakDistance:     5,
	}
}

func (c TremorConfig) withDefaults() TremorConfig {
	def := DefaultTremorConfig()
	if c.SamplingRateHz <= 0 {
		c.SamplingRateHz = def.SamplingRateHz
	}
	if c.MinSamples <= 0 {
		c.MinSamples = def.MinSamples
	}
	if c.MinFrequencySamples <= 0 {
		c.MinFrequencySamples = def.MinFrequencySamples
	}
	if c.MinPeakDistance <= 0 {
		c.MinPeakDistance = def.MinPeakDistance
	}
	return c
}

// AnalyzeTremor computes the full tremor result for one completed held-still
// phase from its unbounded sample set. Fewer than MinSamples samples yield
// an all-zero result with severity None.
func AnalyzeTremor(hand models.Hand, samples []models.MotionSample, cfg TremorConfig) *models.TremorResult {
	cfg = cfg.withDefaults()

	result := &models.TremorResult{
		Hand:              hand,
		DominantAxis:      models.AxisX,
		Severity:          models.SeverityNone,
		RotationStability: 100,
		CreatedAt:         time.Now(),
	}
	if len(samples) < cfg.MinSamples {
		return result
	}

	var sumX, sumY, sumZ float64
	magnitudes := make([]float64, len(samples))
	maxMag := 0.0
	for i, s := range samples {
		sumX += abs(s.X)
		sumY += abs(s.Y)
		sumZ += abs(s.Z)
		magnitudes[i] = s.Magnitude
		if s.Magnitude > maxMag {
			maxMag = s.Magnitude
		}
	}

	n := float64(len(samples))
	result.XAxisAmplitude = sumX / n
	result.YAxisAmplitude = sumY / n
	result.ZAxisAmplitude = sumZ / n
	result.DominantAxis = dominantAxis(result.XAxisAmplitude, result.YAxisAmplitude, result.ZAxisAmplitude)

	result.Amplitude = mean(magnitudes)
	result.MaxAmplitude = maxMag
	result.AmplitudeVariability = stdDev(magnitudes, result.Amplitude)

	elapsed := n / cfg.SamplingRateHz
	result.Frequency = signal.ZeroCrossingFrequency(magnitudes, cfg.MinFrequencySamples, elapsed)
	if result.Frequency == 0 {
		// Windows below the zero-crossing floor still carry timestamps;
		// count spaced peaks over the first-to-last span instead.
		if span := timestampSpanSeconds(samples); span > 0 {
			result.Frequency = signal.PeakFrequency(magnitudes, cfg.MinPeakDistance, span)
		}
	}

	result.Severity = severityFromAmplitude(result.Amplitude)
	result.HasTremor = result.Amplitude > SeverityMinimalThreshold
	result.RotationStability = rotationStability(samples)

	return result
}

// dominantAxis picks the axis with the largest mean absolute amplitude,
// breaking ties toward X, then Y, then Z.
func dominantAxis(x, y, z float64) models.Axis {
	if x >= y && x >= z {
		return models.AxisX
	}
	if y >= z {
		return models.AxisY
	}
	return models.AxisZ
}

// severityFromAmplitude is a monotonic step function of mean amplitude.
func severityFromAmplitude(amplitude float64) models.Severity {
	switch {
	case amplitude >= SeverityVerySevereThreshold:
		return models.SeverityVerySevere
	case amplitude >= SeveritySevereThreshold:
		return models.SeveritySevere
	case amplitude >= SeverityModerateThreshold:
		return models.SeverityModerate
	case amplitude >= SeverityMildThreshold:
		return models.SeverityMild
	case amplitude >= SeverityMinimalThreshold:
		return models.SeverityMinimal
	default:
		return models.SeverityNone
	}
}

// rotationStability derives a 0-100 steadiness score from the mean
// rotation-rate magnitude of samples carrying gyro data. Sessions without
// rotation data score 100 so the interpretation never flags them.
func rotationStability(samples []models.MotionSample) float64 {
	var sum float64
	count := 0
	for _, s := range samples {
		if s.Rotation == nil {
			continue
		}
		sum += s.Rotation.Magnitude()
		count++
	}
	if count == 0 {
		return 100
	}
	return clamp(100-(sum/float64(count))*2, 0, 100)
}

// timestampSpanSeconds is the first-to-last sample timestamp span.
func timestampSpanSeconds(samples []models.MotionSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	return float64(samples[len(samples)-1].Timestamp-samples[0].Timestamp) / 1000
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
