package metrics

import (
	"fmt"
	"math"

	"github.com/drelsherif/shaky/internal/models"
)

// ScorerConfig holds the bilateral asymmetry thresholds and the per-hand
// finding thresholds used by the recommendation builder.
type ScorerConfig struct {
	// FrequencyAsymmetryHz flags a left/right average tapping frequency
	// difference above this value.
	FrequencyAsymmetryHz float64
	// AmplitudeAsymmetryG flags a left/right tremor amplitude difference
	// above this value.
	AmplitudeAsymmetryG float64
	// LowTappingScore marks a per-hand tapping score worth a finding.
	LowTappingScore float64
	// HighFatigueIndex marks a per-hand fatigue index worth a finding.
	HighFatigueIndex float64
}

// DefaultScorerConfig returns the documented thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		FrequencyAsymmetryHz: 1.5,
		AmplitudeAsymmetryG:  0.03,
		LowTappingScore:      50,
		HighFatigueIndex:     0.3,
	}
}

func (c ScorerConfig) withDefaults() ScorerConfig {
	def := DefaultScorerConfig()
	if c.FrequencyAsymmetryHz <= 0 {
		c.FrequencyAsymmetryHz = def.FrequencyAsymmetryHz
	}
	if c.AmplitudeAsymmetryG <= 0 {
		c.AmplitudeAsymmetryG = def.AmplitudeAsymmetryG
	}
	if c.LowTappingScore <= 0 {
		c.LowTappingScore = def.LowTappingScore
	}
	if c.HighFatigueIndex <= 0 {
		c.HighFatigueIndex = def.HighFatigueIndex
	}
	return c
}

// CompareBilateral computes left/right difference metrics. Returns nil
// unless both hands have both a tapping and a tremor result.
func CompareBilateral(record *models.SessionRecord, cfg ScorerConfig) *models.BilateralComparison {
	cfg = cfg.withDefaults()
	if !record.Complete() {
		return nil
	}

	cmp := &models.BilateralComparison{
		TappingFrequencyDiff: math.Abs(record.LeftTapping.AverageFrequency - record.RightTapping.AverageFrequency),
		TremorAmplitudeDiff:  math.Abs(record.LeftTremor.Amplitude - record.RightTremor.Amplitude),
		TremorFrequencyDiff:  math.Abs(record.LeftTremor.Frequency - record.RightTremor.Frequency),
	}
	cmp.FrequencyAsymmetry = cmp.TappingFrequencyDiff > cfg.FrequencyAsymmetryHz
	cmp.AmplitudeAsymmetry = cmp.TremorAmplitudeDiff > cfg.AmplitudeAsymmetryG
	return cmp
}

// DominantHand is the hand with the higher tapping score, Unknown if either
// side is missing.
func DominantHand(record *models.SessionRecord) models.Hand {
	if record.LeftTapping == nil || record.RightTapping == nil {
		return models.UnknownHand
	}
	if record.LeftTapping.Score >= record.RightTapping.Score {
		return models.LeftHand
	}
	return models.RightHand
}

// OverallStatus classifies a complete session into the three buckets.
// Sessions missing any of the four results are Incomplete.
func OverallStatus(record *models.SessionRecord) models.OverallStatus {
	if !record.Complete() {
		return models.StatusIncomplete
	}

	avgScore := (record.LeftTapping.Score + record.RightTapping.Score) / 2
	anyTremor := record.LeftTremor.HasTremor || record.RightTremor.HasTremor

	switch {
	case avgScore >= 70 && !anyTremor:
		return models.StatusNormal
	case avgScore >= 50 && !anyTremor:
		return models.StatusMildIssues
	default:
		return models.StatusNeedsAttention
	}
}

// Recommendations builds the ordered plain-language finding list for a
// session. When nothing is worth flagging it returns the within-normal-range
// message set instead.
func Recommendations(record *models.SessionRecord, cfg ScorerConfig) []string {
	cfg = cfg.withDefaults()
	findings := make([]string, 0, 8)

	for _, hand := range []models.Hand{models.LeftHand, models.RightHand} {
		if tapping := record.Tapping(hand); tapping != nil && tapping.Score < cfg.LowTappingScore {
			findings = append(findings, fmt.Sprintf(
				"%s hand tapping performance is below the expected range (score %.0f); consider repeating the test when rested.",
				handLabel(hand), tapping.Score))
		}
	}
	for _, hand := range []models.Hand{models.LeftHand, models.RightHand} {
		if tremor := record.Tremor(hand); tremor != nil && tremor.HasTremor {
			findings = append(findings, fmt.Sprintf(
				"Tremor detected in the %s hand (%s, %.1f Hz); track whether it appears at rest or during movement.",
				hand, tremor.Severity, tremor.Frequency))
		}
	}
	for _, hand := range []models.Hand{models.LeftHand, models.RightHand} {
		if tapping := record.Tapping(hand); tapping != nil && tapping.FatigueIndex > cfg.HighFatigueIndex {
			findings = append(findings, fmt.Sprintf(
				"Marked tapping slowdown over the %s-hand test (fatigue index %.2f); note time of day and recent exertion.",
				hand, tapping.FatigueIndex))
		}
	}

	if cmp := CompareBilateral(record, cfg); cmp != nil {
		if cmp.FrequencyAsymmetry {
			findings = append(findings, fmt.Sprintf(
				"Tapping speed differs between hands by %.1f Hz; asymmetric slowing can be worth discussing with a clinician.",
				cmp.TappingFrequencyDiff))
		}
		if cmp.AmplitudeAsymmetry {
			findings = append(findings, fmt.Sprintf(
				"Tremor amplitude differs between hands by %.3f g; one-sided tremor is worth noting.",
				cmp.TremorAmplitudeDiff))
		}
	}

	if len(findings) == 0 {
		return []string{
			"All measured motor functions are within normal range.",
			"Repeat the assessment periodically to establish a personal baseline.",
		}
	}
	return findings
}

// Summarize assembles the derived session view handed back for final
// display.
func Summarize(record *models.SessionRecord, cfg ScorerConfig) *models.SessionSummary {
	return &models.SessionSummary{
		Record:          record,
		DominantHand:    DominantHand(record),
		OverallStatus:   OverallStatus(record),
		Comparison:      CompareBilateral(record, cfg),
		Recommendations: Recommendations(record, cfg),
	}
}

// InterpretPhase renders the single-hand interpretation text from whichever
// of the two results exist for that hand. Branch precedence: severe
// bradykinesia, bradykinesia, pathological tremor signature, physiological
// tremor signature, normal motor function. A steadiness note is appended
// when the rotation-based stability score is low.
func InterpretPhase(tapping *models.TappingResult, tremor *models.TremorResult) string {
	text := "Motor function appears within normal limits."

	var tremorFreq, tremorAmp float64
	if tremor != nil {
		tremorFreq = tremor.Frequency
		tremorAmp = tremor.Amplitude
	}

	switch {
	case tapping != nil && tapping.AverageFrequency < 1:
		text = "Severely reduced tapping speed (severe bradykinesia pattern); repeating the test is recommended before drawing conclusions."
	case tapping != nil && tapping.AverageFrequency < 3:
		text = "Reduced tapping speed (bradykinesia pattern); this can also reflect fatigue or unfamiliarity with the task."
	case tremorFreq > 0 && tremorFreq < 6 && tremorAmp > SeverityVerySevereThreshold:
		text = "Low-frequency, high-amplitude tremor signature; this pattern can be associated with pathological tremor."
	case tremorFreq >= 6 && tremorFreq <= 12 && tremorAmp <= SeverityModerateThreshold:
		text = "Fine, fast tremor in the physiological range; small-amplitude tremor at this frequency is common and usually benign."
	}

	if tremor != nil && tremor.RotationStability < 60 {
		text += " Hand steadiness was reduced during the hold (rotation stability below 60)."
	}
	return text
}

func handLabel(hand models.Hand) string {
	if hand == models.LeftHand {
		return "Left"
	}
	if hand == models.RightHand {
		return "Right"
	}
	return "Unknown"
}
