// Package codec converts tracking records to and from their single-line
// textual form.
//
// A record line is a kind tag followed by name="value" attributes:
//
//	<WFTR datetime="03-14-2024 10:02:11" wfStatus="Created" WfHost="web01-host" ThreadId="7" order="1"/>
//
// User data points use the legacy <key:value/> shape.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/petrijr/wftrack/pkg/api"
)

// FieldErrorFunc is called for every attribute whose text could not be
// converted to the field's type. The field keeps its default value.
type FieldErrorFunc func(kind api.Kind, field, value string, err error)

// Codec encodes and decodes record lines.
//
// The zero value is ready to use and silently skips malformed attributes.
type Codec struct {
	OnFieldError FieldErrorFunc
}

var defaultCodec Codec

var attrPattern = regexp.MustCompile(`([A-Za-z_][\w.-]*)\s*=\s*"([^"]*)"`)

// Encode renders rec as a single line without a trailing newline.
func Encode(rec api.Record) (string, error) {
	return defaultCodec.Encode(rec)
}

// Decode reconstructs a record of the given kind from line.
func Decode(line string, kind api.Kind) (api.Record, error) {
	return defaultCodec.Decode(line, kind)
}

// ParseLine decodes line, choosing the record kind from its leading tag.
func ParseLine(line string) (api.Record, error) {
	return defaultCodec.ParseLine(line)
}

func (c Codec) Encode(rec api.Record) (string, error) {
	switch r := rec.(type) {
	case *api.WorkflowRecord:
		return encodeFields(api.KindWorkflow, r, workflowFields), nil
	case *api.ActivityRecord:
		return encodeFields(api.KindActivity, r, activityFields), nil
	case *api.UserRecord:
		return encodeUser(r)
	case nil:
		return "", fmt.Errorf("encode: %w: nil record", api.ErrUnknownRecordKind)
	default:
		return "", fmt.Errorf("encode: %w: %T", api.ErrUnknownRecordKind, rec)
	}
}

func (c Codec) Decode(line string, kind api.Kind) (api.Record, error) {
	switch kind {
	case api.KindWorkflow:
		r := &api.WorkflowRecord{}
		decodeFields(kind, Attributes(line), r, workflowFields, c.OnFieldError)
		return r, nil
	case api.KindActivity:
		r := &api.ActivityRecord{}
		decodeFields(kind, Attributes(line), r, activityFields, c.OnFieldError)
		return r, nil
	case api.KindUser:
		return decodeUser(line)
	default:
		return nil, fmt.Errorf("decode: %w: %q", api.ErrUnknownRecordKind, kind)
	}
}

func (c Codec) ParseLine(line string) (api.Record, error) {
	kind, ok := LineKind(line)
	if !ok {
		return nil, fmt.Errorf("parse line: %w", api.ErrUnknownRecordKind)
	}
	return c.Decode(line, kind)
}

// LineKind reports the record kind of line from its leading tag.
func LineKind(line string) (api.Kind, bool) {
	s := strings.TrimSpace(line)
	if len(s) < 2 || s[0] != '<' {
		return "", false
	}
	tag := s[1:]
	if i := strings.IndexAny(tag, " \t/>"); i >= 0 {
		tag = tag[:i]
	}
	switch api.Kind(tag) {
	case api.KindWorkflow:
		return api.KindWorkflow, true
	case api.KindActivity:
		return api.KindActivity, true
	}
	if _, _, ok := splitUser(s); ok {
		return api.KindUser, true
	}
	return "", false
}

// Attributes tokenizes every name="value" pair in line. Names are lowered;
// values are returned as written, still escaped. The first occurrence of a
// name wins.
func Attributes(line string) map[string]string {
	matches := attrPattern.FindAllStringSubmatch(line, -1)
	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		attrs[name] = m[2]
	}
	return attrs
}
