// Package query reads instance logs and definition documents back from a
// tracking directory.
package query

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/petrijr/wftrack/internal/codec"
	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

// maxLineSize bounds a single record line.
const maxLineSize = 1 << 20

var instanceFilePattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\.xml$`)

// InstanceFile is one instance log found in a tracking directory.
type InstanceFile struct {
	Name       string
	Path       string
	InstanceID string
	Size       int64
	ModTime    time.Time
}

// Manager loads tracking data. Decoding is tolerant: malformed attributes
// and unknown lines are logged at debug level and skipped.
type Manager struct {
	logger *slog.Logger
	codec  codec.Codec
}

// New returns a Manager logging to logger. If logger is nil, slog.Default()
// is used.
func New(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{logger: logger}
	m.codec = codec.Codec{OnFieldError: m.fieldError}
	return m
}

func (m *Manager) fieldError(kind api.Kind, field, value string, err error) {
	m.logger.Debug("field_decode_failed",
		slog.String("kind", string(kind)),
		slog.String("field", field),
		slog.String("value", value),
		slog.Any("error", err),
	)
}

// IsInstanceFile reports whether name is an instance log file name.
func IsInstanceFile(name string) bool {
	return instanceFilePattern.MatchString(name)
}

// ListInstanceFiles returns the instance logs in dir sorted by name. Other
// files, including definition documents and host logs, are ignored.
func (m *Manager) ListInstanceFiles(dir string) ([]InstanceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []InstanceFile
	for _, e := range entries {
		if e.IsDir() || !IsInstanceFile(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		path := filepath.Join(dir, e.Name())
		out = append(out, InstanceFile{
			Name:       e.Name(),
			Path:       path,
			InstanceID: persistence.InstanceID(path),
			Size:       fi.Size(),
			ModTime:    fi.ModTime(),
		})
	}
	return out, nil
}

// LoadInstance reads the instance log at path.
func (m *Manager) LoadInstance(path string) (*api.InstanceHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	h, err := m.read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	h.Path = path
	h.InstanceID = persistence.InstanceID(path)
	h.LastWrite = fi.ModTime()
	return h, nil
}

func (m *Manager) read(r io.Reader) (*api.InstanceHistory, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	h := &api.InstanceHistory{}
	sawHeader := false
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !sawHeader {
			status, store, err := codec.DecodeHeader(line)
			if err != nil {
				return nil, err
			}
			h.Status, h.Store = status, store
			sawHeader = true
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, api.ErrNotTrackingLog
	}

	h.Records = m.ParseRecords(lines)
	return h, nil
}

// ParseRecords decodes each line by its leading kind tag. Lines that are not
// records, such as the closing tag, are skipped.
func (m *Manager) ParseRecords(lines []string) []api.Record {
	out := make([]api.Record, 0, len(lines))
	for _, line := range lines {
		if codec.IsClosing(line) {
			continue
		}
		rec, err := m.codec.ParseLine(line)
		if err != nil {
			m.logger.Debug("line_skipped", slog.String("line", line), slog.Any("error", err))
			continue
		}
		out = append(out, rec)
	}
	return out
}

// GetDefinition returns the definition document stored next to the log of h.
// Failures are reported as *api.DefinitionUnavailableError.
func (m *Manager) GetDefinition(h *api.InstanceHistory) (string, error) {
	dir := filepath.Dir(h.Path)
	data, err := persistence.NewDefinitionFile(persistence.DefinitionPath(dir, h.InstanceID), h.InstanceID).Load()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
