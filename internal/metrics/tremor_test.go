package metrics

import (
	"math"
	"testing"

	"github.com/drelsherif/shaky/internal/models"
)

func constantSamples(n int, x, y, z float64) []models.MotionSample {
	samples := make([]models.MotionSample, n)
	for i := range samples {
		samples[i] = models.NewMotionSample(x, y, z, nil, int64(i*20))
	}
	return samples
}

func TestAnalyzeTremor_AllZeroSamples(t *testing.T) {
	result := AnalyzeTremor(models.LeftHand, constantSamples(200, 0, 0, 0), DefaultTremorConfig())

	if result.Amplitude != 0 {
		t.Fatalf("amplitude=%v, want 0", result.Amplitude)
	}
	if result.Severity != models.SeverityNone {
		t.Fatalf("severity=%q, want %q", result.Severity, models.SeverityNone)
	}
	if result.HasTremor {
		t.Fatalf("hasTremor=true for zero input")
	}
	if result.DominantAxis != models.AxisX {
		t.Fatalf("dominantAxis=%q, want tie-break default X", result.DominantAxis)
	}
	if result.Frequency != 0 {
		t.Fatalf("frequency=%v, want 0", result.Frequency)
	}
}

func TestAnalyzeTremor_SeverityBoundaries(t *testing.T) {
	cases := []struct {
		amplitude float64
		want      models.Severity
	}{
		{0.019, models.SeverityNone},
		{0.02, models.SeverityMinimal},
		{0.04, models.SeverityMild},
		{0.08, models.SeverityModerate},
		{0.15, models.SeveritySevere},
		{0.25, models.SeverityVerySevere},
	}
	for _, tc := range cases {
		if got := severityFromAmplitude(tc.amplitude); got != tc.want {
			t.Fatalf("severity(%v)=%q, want %q", tc.amplitude, got, tc.want)
		}
	}
}

func TestAnalyzeTremor_SeverityMonotonic(t *testing.T) {
	order := map[models.Severity]int{
		models.SeverityNone:       0,
		models.SeverityMinimal:    1,
		models.SeverityMild:       2,
		models.SeverityModerate:   3,
		models.SeveritySevere:     4,
		models.SeverityVerySevere: 5,
	}
	prev := -1
	for a := 0.0; a <= 0.30; a += 0.005 {
		cur := order[severityFromAmplitude(a)]
		if cur < prev {
			t.Fatalf("severity not monotonic at amplitude %v", a)
		}
		prev = cur
	}
}

func TestAnalyzeTremor_DominantAxis(t *testing.T) {
	cases := []struct {
		x, y, z float64
		want    models.Axis
	}{
		{0.5, 0.1, 0.1, models.AxisX},
		{0.1, 0.5, 0.1, models.AxisY},
		{0.1, 0.1, 0.5, models.AxisZ},
		{0.3, 0.3, 0.1, models.AxisX}, // tie toward X
		{0.1, 0.3, 0.3, models.AxisY}, // tie toward Y over Z
	}
	for _, tc := range cases {
		result := AnalyzeTremor(models.LeftHand, constantSamples(50, tc.x, tc.y, tc.z), DefaultTremorConfig())
		if result.DominantAxis != tc.want {
			t.Fatalf("dominantAxis(%v,%v,%v)=%q, want %q", tc.x, tc.y, tc.z, result.DominantAxis, tc.want)
		}
	}
}

func TestAnalyzeTremor_InsufficientSamples(t *testing.T) {
	result := AnalyzeTremor(models.RightHand, constantSamples(5, 0.5, 0.5, 0.5), DefaultTremorConfig())

	if result.Amplitude != 0 || result.MaxAmplitude != 0 || result.Frequency != 0 {
		t.Fatalf("expected zeroed result for short input, got %+v", result)
	}
	if result.Severity != models.SeverityNone || result.HasTremor {
		t.Fatalf("expected severity None without tremor, got %+v", result)
	}
}

func TestAnalyzeTremor_VariabilityAndPeak(t *testing.T) {
	// Alternating strong/weak magnitudes: variability and max must reflect it.
	samples := make([]models.MotionSample, 100)
	for i := range samples {
		mag := 0.05
		if i%2 == 0 {
			mag = 0.15
		}
		samples[i] = models.NewMotionSample(mag, 0, 0, nil, int64(i*20))
	}

	result := AnalyzeTremor(models.LeftHand, samples, DefaultTremorConfig())
	if math.Abs(result.Amplitude-0.10) > 1e-9 {
		t.Fatalf("amplitude=%v, want 0.10", result.Amplitude)
	}
	if math.Abs(result.MaxAmplitude-0.15) > 1e-9 {
		t.Fatalf("maxAmplitude=%v, want 0.15", result.MaxAmplitude)
	}
	if math.Abs(result.AmplitudeVariability-0.05) > 1e-9 {
		t.Fatalf("amplitudeVariability=%v, want 0.05", result.AmplitudeVariability)
	}
	if !result.HasTremor || result.Severity != models.SeverityModerate {
		t.Fatalf("severity=%q hasTremor=%v, want Moderate/true", result.Severity, result.HasTremor)
	}
}

func TestAnalyzeTremor_ShortWindowPeakFrequency(t *testing.T) {
	// 15 samples at 20 ms spacing: above the analyzer floor but below the
	// zero-crossing floor, so frequency comes from spaced peaks over the
	// 0.28 s timestamp span.
	samples := make([]models.MotionSample, 15)
	for i := range samples {
		mag := 0.01
		if i == 3 || i == 10 {
			mag = 0.1
		}
		samples[i] = models.NewMotionSample(mag, 0, 0, nil, int64(i*20))
	}

	result := AnalyzeTremor(models.LeftHand, samples, DefaultTremorConfig())
	want := 2.0 / 0.28
	if math.Abs(result.Frequency-want) > 1e-6 {
		t.Fatalf("frequency=%v, want %v from 2 peaks over 0.28 s", result.Frequency, want)
	}

	// A flat short window still reads zero.
	flat := AnalyzeTremor(models.LeftHand, constantSamples(15, 0.01, 0, 0), DefaultTremorConfig())
	if flat.Frequency != 0 {
		t.Fatalf("frequency=%v for flat short window, want 0", flat.Frequency)
	}
}

func TestAnalyzeTremor_RotationStability(t *testing.T) {
	steady := make([]models.MotionSample, 50)
	shaky := make([]models.MotionSample, 50)
	for i := range steady {
		steady[i] = models.NewMotionSample(0.01, 0, 0, &models.RotationRate{Alpha: 1}, int64(i*20))
		shaky[i] = models.NewMotionSample(0.01, 0, 0, &models.RotationRate{Alpha: 40}, int64(i*20))
	}

	cfg := DefaultTremorConfig()
	if got := AnalyzeTremor(models.LeftHand, steady, cfg).RotationStability; got < 90 {
		t.Fatalf("stability=%v for steady hold, want >= 90", got)
	}
	if got := AnalyzeTremor(models.LeftHand, shaky, cfg).RotationStability; got >= 60 {
		t.Fatalf("stability=%v for unsteady hold, want < 60", got)
	}

	noGyro := AnalyzeTremor(models.LeftHand, constantSamples(50, 0.01, 0, 0), cfg)
	if noGyro.RotationStability != 100 {
		t.Fatalf("stability=%v without gyro data, want 100", noGyro.RotationStability)
	}
}
