package update

import (
	"strconv"
	"strings"
	"time"
)

// Update frequencies. "every_N" is matched by prefix, see ParseFrequency.
const (
	FrequencyManual  = "manual"
	FrequencyStartup = "startup"
	FrequencyDaily   = "daily"

	everyPrefix = "every_"
)

// DefaultUpdateDays is the informational interval shown for every_N setups.
const DefaultUpdateDays = 7

// Config is the persisted auto-update state.
type Config struct {
	AutoUpdate bool       `json:"auto_update"`
	Frequency  string     `json:"update_frequency"`
	LastUpdate *time.Time `json:"last_update"`
	UpdateDays int        `json:"update_days"`
}

// Defaults returns the configuration used for every missing field.
func Defaults() Config {
	return Config{
		AutoUpdate: false,
		Frequency:  FrequencyManual,
		LastUpdate: nil,
		UpdateDays: DefaultUpdateDays,
	}
}

// WithLastUpdate returns a copy of c stamped with t.
func (c Config) WithLastUpdate(t time.Time) Config {
	c.LastUpdate = &t
	return c
}

// ParseFrequency returns the minimum interval between automatic syncs.
// ok is false for manual, startup and unknown or malformed values.
func ParseFrequency(freq string) (interval time.Duration, ok bool) {
	if freq == FrequencyDaily {
		return 24 * time.Hour, true
	}
	rest, found := strings.CutPrefix(freq, everyPrefix)
	if !found {
		return 0, false
	}
	days, err := strconv.Atoi(rest)
	if err != nil || days <= 0 {
		return 0, false
	}
	return time.Duration(days) * 24 * time.Hour, true
}
