package codec

import (
	"fmt"
	"strings"

	"github.com/petrijr/wftrack/pkg/api"
)

const (
	// HeaderTag names the element that wraps an instance log.
	HeaderTag = "WorkFlowInfo"

	// HeaderWidth is the padded width of the header line, newline excluded.
	// The header is rewritten in place, so every status must fit in it.
	HeaderWidth = 100

	// HeaderLen is the byte length of the header line including its newline.
	HeaderLen = HeaderWidth + 1

	// ClosingTag terminates an instance log.
	ClosingTag = "</" + HeaderTag + ">"

	// ClosingLine is ClosingTag as written to disk.
	ClosingLine = ClosingTag + "\n"
)

var longestStatus = func() api.InstanceStatus {
	var longest api.InstanceStatus
	for _, st := range api.AllInstanceStatuses {
		if len(st) > len(longest) {
			longest = st
		}
	}
	return longest
}()

func renderHeader(status api.InstanceStatus, store string) string {
	return fmt.Sprintf(`<%s %s="%s" %s="%s" >`, HeaderTag, AttrStatus, status, AttrStore, Escape(foldLines(store)))
}

// EncodeHeader renders the padded header line, newline included.
func EncodeHeader(status api.InstanceStatus, store string) (string, error) {
	s := renderHeader(status, store)
	if len(s) > HeaderWidth {
		return "", fmt.Errorf("%w: %d bytes", api.ErrHeaderOverflow, len(s))
	}
	return s + strings.Repeat(" ", HeaderWidth-len(s)) + "\n", nil
}

// ValidateStore checks that a header naming store fits HeaderWidth for
// every instance status.
func ValidateStore(store string) error {
	_, err := EncodeHeader(longestStatus, store)
	return err
}

// IsHeader reports whether line opens an instance log.
func IsHeader(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "<"+HeaderTag) && !strings.HasPrefix(s, ClosingTag)
}

// IsClosing reports whether line is the closing tag.
func IsClosing(line string) bool {
	return strings.TrimSpace(line) == ClosingTag
}

// DecodeHeader parses the status and store name out of a header line.
func DecodeHeader(line string) (api.InstanceStatus, string, error) {
	if !IsHeader(line) {
		return "", "", api.ErrNotTrackingLog
	}
	attrs := Attributes(line)
	raw, ok := attrs[strings.ToLower(AttrStatus)]
	if !ok {
		return "", "", fmt.Errorf("%w: header has no %s", api.ErrNotTrackingLog, AttrStatus)
	}
	status, err := api.ParseInstanceStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("decode header: %w", err)
	}
	return status, Unescape(attrs[strings.ToLower(AttrStore)]), nil
}
