package curve

// Unit sizes of the step lists, in degrees.
const (
	TimeMinuteDeg = 0.25     // one minute of right ascension
	ArcminDeg     = 1.0 / 60 // one arcminute
)

// RASteps lists right-ascension grid steps in minutes of time.
var RASteps = []float64{0.25, 0.5, 1, 2, 3, 5, 10, 15, 20, 30, 60, 120, 180}

// DecSteps lists declination, altitude and azimuth grid steps in arcminutes.
var DecSteps = []float64{1, 2, 5, 10, 15, 20, 30, 60, 120, 300, 600, 900, 1200, 1800, 3600}

// SelectStep picks a grid step from steps (expressed in units of unitDeg)
// for a field radius in degrees and returns it in degrees. It takes the
// first step whose line count across the field radius drops below minLines,
// unless the previous step's count is closer to the threshold.
func SelectStep(steps []float64, unitDeg, fieldRadiusDeg, minLines float64) float64 {
	if len(steps) == 0 {
		return 0
	}
	count := func(i int) float64 { return fieldRadiusDeg / (steps[i] * unitDeg) }

	for i := range steps {
		n := count(i)
		if n >= minLines {
			continue
		}
		if i == 0 {
			return steps[0] * unitDeg
		}
		if prev := count(i - 1); prev-minLines < minLines-n {
			return steps[i-1] * unitDeg
		}
		return steps[i] * unitDeg
	}
	return steps[len(steps)-1] * unitDeg
}
