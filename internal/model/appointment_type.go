package model

import (
	"strings"
	"time"
)

// DefaultApptType is assumed when an availability query names no type.
const DefaultApptType = "General Consultation"

// ApptDurations is the closed appointment-type catalogue: symbolic
// name to fixed duration. The set is fixed at deploy time; it can be
// replaced from configuration at startup but never mutated afterwards.
var ApptDurations = map[string]time.Duration{
	"General Consultation":    30 * time.Minute,
	"Follow-up":               15 * time.Minute,
	"Physical Exam":           45 * time.Minute,
	"Specialist Consultation": 60 * time.Minute,
}

// SetApptDurations replaces the catalogue from configuration. Called
// once during startup, before any requests are served.
func SetApptDurations(minutes map[string]int) {
	if len(minutes) == 0 {
		return
	}
	durations := make(map[string]time.Duration, len(minutes))
	for name, m := range minutes {
		if m > 0 {
			durations[name] = time.Duration(m) * time.Minute
		}
	}
	if len(durations) > 0 {
		ApptDurations = durations
	}
}

// DurationFor resolves an appointment type to its duration. Matching
// falls back to case-insensitive comparison because config loaders
// lowercase map keys.
func DurationFor(apptType string) (time.Duration, bool) {
	if d, ok := ApptDurations[apptType]; ok {
		return d, true
	}
	for name, d := range ApptDurations {
		if strings.EqualFold(name, apptType) {
			return d, true
		}
	}
	return 0, false
}
