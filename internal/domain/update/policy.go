package update

import "time"

// ShouldSync decides whether an automatic sync is due at now.
//
// startup is unconditional; the caller consults it once per process start.
// Interval frequencies are due when no sync has completed yet or when at
// least one full interval has elapsed since the last one.
func ShouldSync(cfg Config, now time.Time) bool {
	if !cfg.AutoUpdate {
		return false
	}

	switch cfg.Frequency {
	case FrequencyManual:
		return false
	case FrequencyStartup:
		return true
	}

	interval, ok := ParseFrequency(cfg.Frequency)
	if !ok {
		return false
	}
	if cfg.LastUpdate == nil {
		return true
	}
	return now.Sub(*cfg.LastUpdate) >= interval
}
