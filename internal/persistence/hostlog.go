package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// HostLog is the free-text log of one machine. Writes are best effort: every
// failure is swallowed.
type HostLog struct {
	path string
}

// NewHostLog returns the host log for machine under dir.
func NewHostLog(dir, machine string) *HostLog {
	return &HostLog{path: filepath.Join(dir, machine+HostLogExt)}
}

// Path returns the log file path.
func (h *HostLog) Path() string { return h.path }

// Append writes line followed by a newline.
func (h *HostLog) Append(line string) {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line + "\n")
}

// ProcessInfo identifies the running process.
type ProcessInfo struct {
	Machine string
	Name    string
	PID     int
	Started time.Time
}

// HostID is the host identifier written on every record.
func (p ProcessInfo) HostID() string {
	return p.Machine + "-" + p.Name
}

// StartupLine renders the line written to the host log when a tracking
// service starts.
func (p ProcessInfo) StartupLine() string {
	return fmt.Sprintf("%s PID=%d started @ %s", p.Name, p.PID, p.Started.Local().Format(time.DateTime))
}

// CurrentProcess describes the running process. Fields gopsutil cannot
// resolve fall back to the os package and the current time.
func CurrentProcess() ProcessInfo {
	info := ProcessInfo{PID: os.Getpid(), Started: time.Now()}

	if hi, err := host.Info(); err == nil && hi.Hostname != "" {
		info.Machine = hi.Hostname
	} else if name, err := os.Hostname(); err == nil {
		info.Machine = name
	}

	if p, err := process.NewProcess(int32(info.PID)); err == nil {
		if name, err := p.Name(); err == nil {
			info.Name = name
		}
		if ms, err := p.CreateTime(); err == nil {
			info.Started = time.UnixMilli(ms)
		}
	}
	if info.Name == "" {
		if exe, err := os.Executable(); err == nil {
			info.Name = filepath.Base(exe)
		}
	}
	return info
}
