package signal

// PeakFrequency estimates the oscillation rate of a value sequence by
// counting local maxima. A point is a local maximum when it is strictly
// greater than both neighbors; a peak is accepted only if it lies more than
// minPeakDistance samples after the previously accepted one, which rejects
// noise-induced double counts. elapsedSeconds should come from the first and
// last sample timestamps of the window, not the nominal test duration.
func PeakFrequency(values []float64, minPeakDistance int, elapsedSeconds float64) float64 {
	if len(values) < 3 || elapsedSeconds <= 0 {
		return 0
	}

	peakCount := 0
	lastPeak := -minPeakDistance - 1
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			if i-lastPeak > minPeakDistance {
				peakCount++
				lastPeak = i
			}
		}
	}

	return float64(peakCount) / elapsedSeconds
}

// ZeroCrossingFrequency estimates the oscillation rate of a value sequence
// by counting sign changes of the mean-centered signal. Two crossings make
// one full cycle. Sequences shorter than minSamples carry no meaningful
// frequency content and yield 0, as does a non-positive elapsed time.
func ZeroCrossingFrequency(values []float64, minSamples int, elapsedSeconds float64) float64 {
	if len(values) < minSamples || elapsedSeconds <= 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	// Count sign changes between consecutive centered values.
	crossings := 0
	prev := values[0] - mean
	for _, v := range values[1:] {
		cur := v - mean
		if (prev > 0 && cur <= 0) || (prev <= 0 && cur > 0) {
			crossings++
		}
		prev = cur
	}

	return (float64(crossings) / 2.0) / elapsedSeconds
}
