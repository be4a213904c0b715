package classify

import "fmt"

// Thresholds map a priority score onto the four levels. A score at or below
// Low is Low, at or above Urgent is Urgent, at or above High is High, and
// anything else is Normal.
type Thresholds struct {
	Low    int `yaml:"low"`
	High   int `yaml:"high"`
	Urgent int `yaml:"urgent"`
}

// Level returns the priority for score.
func (t Thresholds) Level(score int) Priority {
	switch {
	case score >= t.Urgent:
		return Urgent
	case score >= t.High:
		return High
	case score <= t.Low:
		return Low
	default:
		return Normal
	}
}

// Options tunes the heuristics. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// DueDateHeaders are checked in order before the body.
	DueDateHeaders []string `yaml:"due_date_headers"`

	// Tolerance is how many days before receipt a due date may fall.
	Tolerance int `yaml:"tolerance_days"`

	// MaxHorizon is how many days after receipt a due date may fall.
	MaxHorizon int `yaml:"max_horizon_days"`

	// DeadlineWindow is the maximum number of words between a deadline
	// keyword and the date it anchors.
	DeadlineWindow int `yaml:"deadline_window"`

	// DayFirst reads ambiguous numeric dates as d/m/y instead of m/d/y.
	DayFirst bool `yaml:"day_first"`

	// QuestionMarks counts "?" as a weak pending signal.
	QuestionMarks bool `yaml:"question_marks"`

	Thresholds Thresholds `yaml:"thresholds"`
}

// DefaultOptions returns the built-in tuning.
func DefaultOptions() Options {
	return Options{
		DueDateHeaders: []string{
			"Reply-By",
			"X-Response-Due",
			"X-Due-Date",
			"X-Deadline",
			"Expiry-Date",
			"Expires",
		},
		Tolerance:      1,
		MaxHorizon:     3650,
		DeadlineWindow: 6,
		DayFirst:       true,
		QuestionMarks:  true,
		Thresholds:     Thresholds{Low: -1, High: 1, Urgent: 2},
	}
}

// Validate checks that the options are consistent.
func (o Options) Validate() error {
	if o.Tolerance < 0 {
		return fmt.Errorf("tolerance_days must not be negative")
	}
	if o.MaxHorizon <= 0 {
		return fmt.Errorf("max_horizon_days must be positive")
	}
	if o.DeadlineWindow < 0 {
		return fmt.Errorf("deadline_window must not be negative")
	}
	t := o.Thresholds
	if t.Low >= 0 {
		return fmt.Errorf("thresholds: low (%d) must be below the normal baseline 0", t.Low)
	}
	if t.High <= 0 {
		return fmt.Errorf("thresholds: high (%d) must be above the normal baseline 0", t.High)
	}
	if t.Urgent < t.High {
		return fmt.Errorf("thresholds: urgent (%d) must not be below high (%d)", t.Urgent, t.High)
	}
	return nil
}
