package topology

import (
	"os"
	"runtime/debug"
	"time"
)

// IsNewOrUpdated reports whether the definition document previous was built
// from a different binary than the one stamped live.
//
// A missing or unreadable document counts as changed. Timestamps compare at
// second resolution in local time.
func IsNewOrUpdated(previous []byte, live time.Time) bool {
	if len(previous) == 0 {
		return true
	}
	_, stored, err := UnmarshalDefinition(previous)
	if err != nil || stored.IsZero() {
		return true
	}
	return !stored.Equal(live.Local().Truncate(time.Second))
}

// BuildTimestamp identifies the running binary: the VCS commit time recorded
// in its build info, else the executable's modification time, else zero.
func BuildTimestamp() time.Time {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key != "vcs.time" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				return t.Local()
			}
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return time.Time{}
	}
	fi, err := os.Stat(exe)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime().Local()
}
