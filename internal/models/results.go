package models

import "time"

// Hand identifies which hand performed a test phase.
type Hand string

const (
	LeftHand    Hand = "left"
	RightHand   Hand = "right"
	UnknownHand Hand = "unknown"
)

// TestKind identifies the type of a test phase.
type TestKind string

const (
	TappingTest TestKind = "tapping"
	TremorTest  TestKind = "tremor"
)

// Grade buckets a tapping score.
type Grade string

const (
	GradeNormal      Grade = "Normal"
	GradeMild        Grade = "Mild Impairment"
	GradeModerate    Grade = "Moderate Impairment"
	GradeSignificant Grade = "Significant Impairment"
	GradeSevere      Grade = "Severe Impairment"
)

// Severity buckets mean tremor amplitude.
type Severity string

const (
	SeverityNone       Severity = "None"
	SeverityMinimal    Severity = "Minimal"
	SeverityMild       Severity = "Mild"
	SeverityModerate   Severity = "Moderate"
	SeveritySevere     Severity = "Severe"
	SeverityVerySevere Severity = "Very Severe"
)

// Axis identifies an acceleration axis.
type Axis string

const (
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

// TappingResult holds the processed metrics from one finger-tapping phase.
type TappingResult struct {
	Hand              Hand      `json:"hand"`
	TapCount          int       `json:"tapCount"`
	AverageFrequency  float64   `json:"averageFrequency"`  // Hz
	PeakFrequency     float64   `json:"peakFrequency"`     // Hz
	Consistency       float64   `json:"consistency"`       // 0-1
	RhythmStability   float64   `json:"rhythmStability"`   // 0-1
	FatigueIndex      float64   `json:"fatigueIndex"`      // 0-1
	AccelerationPhase float64   `json:"accelerationPhase"` // seconds
	DecelerationPhase float64   `json:"decelerationPhase"` // seconds
	Score             float64   `json:"score"`             // 0-100
	Grade             Grade     `json:"grade"`
	CreatedAt         time.Time `json:"createdAt"`
}

// TremorResult holds the processed metrics from one held-still tremor phase.
type TremorResult struct {
	Hand                 Hand      `json:"hand"`
	Frequency            float64   `json:"frequency"` // Hz
	Amplitude            float64   `json:"amplitude"` // mean magnitude, g
	MaxAmplitude         float64   `json:"maxAmplitude"`
	AmplitudeVariability float64   `json:"amplitudeVariability"`
	XAxisAmplitude       float64   `json:"xAxisAmplitude"`
	YAxisAmplitude       float64   `json:"yAxisAmplitude"`
	ZAxisAmplitude       float64   `json:"zAxisAmplitude"`
	DominantAxis         Axis      `json:"dominantAxis"`
	Severity             Severity  `json:"severity"`
	HasTremor            bool      `json:"hasTremor"`
	RotationStability    float64   `json:"rotationStability"` // 0-100, 100 when no gyro data
	CreatedAt            time.Time `json:"createdAt"`
}

// SessionRecord accumulates per-hand results for one assessment session.
// Each (hand, kind) slot is written once; Reset clears everything.
type SessionRecord struct {
	LeftTapping  *TappingResult `json:"leftTapping,omitempty"`
	RightTapping *TappingResult `json:"rightTapping,omitempty"`
	LeftTremor   *TremorResult  `json:"leftTremor,omitempty"`
	RightTremor  *TremorResult  `json:"rightTremor,omitempty"`
}

// Tapping returns the tapping result for a hand, nil if not recorded.
func (s *SessionRecord) Tapping(hand Hand) *TappingResult {
	if hand == LeftHand {
		return s.LeftTapping
	}
	if hand == RightHand {
		return s.RightTapping
	}
	return nil
}

// Tremor returns the tremor result for a hand, nil if not recorded.
func (s *SessionRecord) Tremor(hand Hand) *TremorResult {
	if hand == LeftHand {
		return s.LeftTremor
	}
	if hand == RightHand {
		return s.RightTremor
	}
	return nil
}

// Complete reports whether all four phase results are present.
func (s *SessionRecord) Complete() bool {
	return s.LeftTapping != nil && s.RightTapping != nil &&
		s.LeftTremor != nil && s.RightTremor != nil
}

// OverallStatus is the 3-bucket session classification.
type OverallStatus string

const (
	StatusIncomplete     OverallStatus = "Incomplete"
	StatusNormal         OverallStatus = "Normal"
	StatusMildIssues     OverallStatus = "Mild Issues"
	StatusNeedsAttention OverallStatus = "Needs Attention"
)

// BilateralComparison holds left/right difference metrics.
type BilateralComparison struct {
	TappingFrequencyDiff float64 `json:"tappingFrequencyDiff"`
	TremorAmplitudeDiff  float64 `json:"tremorAmplitudeDiff"`
	TremorFrequencyDiff  float64 `json:"tremorFrequencyDiff"`
	FrequencyAsymmetry   bool    `json:"frequencyAsymmetry"`
	AmplitudeAsymmetry   bool    `json:"amplitudeAsymmetry"`
}

// SessionSummary is the derived view returned to the collaborator for final
// display.
type SessionSummary struct {
	Record          *SessionRecord       `json:"record"`
	DominantHand    Hand                 `json:"dominantHand"`
	OverallStatus   OverallStatus        `json:"overallStatus"`
	Comparison      *BilateralComparison `json:"comparison,omitempty"`
	Recommendations []string             `json:"recommendations"`
}
