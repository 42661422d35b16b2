package clock

import "time"

// Layout for telemetry timestamps: ISO 8601 local time with a colon in the
// UTC offset. Downstream consumers parse the offset strictly.
const iso8601 = "2006-01-02T15:04:05-07:00"

// The system clock is considered synchronized once it reports a plausible
// wall-clock year. Before time sync it sits near the epoch.
const minSyncYear = 2022

// Clock reports wall-clock time and whether that time can be trusted.
type Clock interface {
	Now() (time.Time, bool)
}

// System reads the operating system clock.
type System struct{}

func (System) Now() (time.Time, bool) {
	now := time.Now()
	return now, now.Year() >= minSyncYear
}

// Timestamp formats t in the telemetry timestamp layout.
func Timestamp(t time.Time) string {
	return t.Format(iso8601)
}
