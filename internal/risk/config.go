package risk

// Window is a rolling window over the daily series.
// MinObs is the number of in-window days needed before a value is produced;
// it is smaller than Length so partial windows at the start still report.
type Window struct {
	Length int
	MinObs int
}

// bounds returns a usable (length, min) pair. A non-positive length disables
// the window; min is clamped into [1, length].
func (w Window) bounds() (int, int, bool) {
	if w.Length <= 0 {
		return 0, 0, false
	}
	min := w.MinObs
	if min < 1 {
		min = 1
	}
	if min > w.Length {
		min = w.Length
	}
	return w.Length, min, true
}

// Config holds the fixed analytics parameters.
type Config struct {
	Short     Window
	Medium    Window // also drives mean, std-dev, ratio and strike rate
	Long      Window
	WorstDays int
}

// DefaultConfig returns the standard windows (14/28/56 days) and worst-day count.
func DefaultConfig() Config {
	return Config{
		Short:     Window{Length: 14, MinObs: 5},
		Medium:    Window{Length: 28, MinObs: 5},
		Long:      Window{Length: 56, MinObs: 10},
		WorstDays: 20,
	}
}
