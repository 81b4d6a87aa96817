package timezone

import "time"

// Normalize reinterprets the wall-clock components of local in the named IANA
// zone and returns the corresponding UTC instant. When the zone is empty or
// unknown it degrades to treating the input as already UTC and returns false
// so the caller can log the fallback. Never fails.
func Normalize(local time.Time, tz string) (time.Time, bool) {
	loc, err := time.LoadLocation(tz)
	if tz == "" || err != nil {
		return local.UTC(), false
	}

	year, month, day := local.Date()
	hour, min, sec := local.Clock()
	return time.Date(year, month, day, hour, min, sec, local.Nanosecond(), loc).UTC(), true
}
