package models

import "math"

// RotationRate holds gyroscope readings in degrees per second, using the
// device-orientation naming (alpha = z, beta = x, gamma = y).
type RotationRate struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Magnitude returns the Euclidean norm of the rotation-rate vector.
func (r RotationRate) Magnitude() float64 {
	return math.Sqrt(r.Alpha*r.Alpha + r.Beta*r.Beta + r.Gamma*r.Gamma)
}

// MotionSample is a single accelerometer reading delivered by the sensor
// collaborator. Immutable once created.
type MotionSample struct {
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Z         float64       `json:"z"`
	Magnitude float64       `json:"magnitude"`
	Rotation  *RotationRate `json:"rotation,omitempty"`
	Timestamp int64         `json:"timestamp"` // unix milliseconds
}

// NewMotionSample builds a sample and fills in the magnitude.
func NewMotionSample(x, y, z float64, rotation *RotationRate, timestampMs int64) MotionSample {
	return MotionSample{
		X:         x,
		Y:         y,
		Z:         z,
		Magnitude: math.Sqrt(x*x + y*y + z*z),
		Rotation:  rotation,
		Timestamp: timestampMs,
	}
}

// TapEvent records one tap as seconds elapsed since the phase started.
type TapEvent struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}
