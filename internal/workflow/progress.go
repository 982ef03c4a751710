package workflow

// Progress is emitted after each terminal transition during a run.
type Progress struct {
	Completed int
	Failed    int
	Total     int
	// Current is the input path that just reached a terminal state.
	Current string
}

// ItemFailure pairs a failed input path with its recorded error.
type ItemFailure struct {
	Path  string
	Error string
}

// Summary aggregates the outcome of one run, restricted to the files the
// run touched.
type Summary struct {
	RunID      string
	Discovered int
	Dispatched int
	Completed  int
	Failed     int
	// Skipped counts dispatch candidates another actor claimed first.
	Skipped         int
	TotalDuration   float64
	TotalProcessing float64
	Failures        []ItemFailure
}

// RTF returns the run's overall real-time factor.
func (s Summary) RTF() float64 {
	if s.TotalDuration <= 0 {
		return 0
	}
	return s.TotalProcessing / s.TotalDuration
}
