package simulation

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a monotonic simulation duration with nanosecond resolution. It
// only ever advances through the Scheduler; wall-clock time is used solely for
// measuring simulation speed (see Benchmark in sim.go).
type Duration time.Duration

// ZeroDuration is the identity element, also the time of simulation start.
const ZeroDuration Duration = 0

// Seconds returns the duration expressed in fractional seconds.
func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

// DurationFromSeconds builds a Duration from a float number of seconds.
func DurationFromSeconds(s float64) Duration {
	return Duration(time.Duration(s * float64(time.Second)))
}

func (d Duration) String() string { return time.Duration(d).String() }

// Time is a point in simulated time, measured as a Duration since the
// simulation's epoch (start of day). It carries its own JSON codec so it
// serializes compactly in save-states and API responses, matching the
// teacher's simulation.Time idiom.
type Time struct {
	d Duration
}

// TimeFromSeconds builds a Time the given number of seconds after the epoch.
func TimeFromSeconds(s float64) Time { return Time{d: DurationFromSeconds(s)} }

// TimeZero is the simulation epoch.
var TimeZero = Time{}

// IsZero reports whether t is exactly the epoch.
func (t Time) IsZero() bool { return t.d == 0 }

// Sub returns the Duration elapsed from other to t (negative if t is earlier).
func (t Time) Sub(other Time) Duration { return t.d - other.d }

// Add returns t advanced by d.
func (t Time) Add(d Duration) Time { return Time{d: t.d + d} }

// Before reports whether t occurs strictly before other.
func (t Time) Before(other Time) bool { return t.d < other.d }

// Less is an alias for Before so Time satisfies ordered-key helpers.
func (t Time) Less(other Time) bool { return t.Before(other) }

// Format renders t as hh:mm:ss, matching the teacher's dashboard formatting.
// The layout parameter is accepted for symmetry with time.Time.Format but
// unused: the simulation clock only ever needs one rendering.
func (t Time) Format(layout string) string {
	_ = layout
	secs := int64(t.d.Seconds())
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// MarshalJSON serializes Time as its duration-since-epoch in nanoseconds.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t.d))
}

// UnmarshalJSON parses Time from its duration-since-epoch in nanoseconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return err
	}
	t.d = Duration(ns)
	return nil
}
