package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/petrijr/wftrack/pkg/api"
)

// TimeLayout is the layout of the datetime attribute. Values are local time
// with second resolution.
const TimeLayout = "01-02-2006 15:04:05"

// Attribute names. Decoding matches them case-insensitively.
const (
	AttrDateTime     = "datetime"
	AttrStatus       = "wfStatus"
	AttrHost         = "WfHost"
	AttrThreadID     = "ThreadId"
	AttrOrder        = "order"
	AttrType         = "Type"
	AttrName         = "name"
	AttrDisplayName  = "displayname"
	AttrApexStatus   = "ApexStatus"
	AttrErrorCode    = "ErrorCode"
	AttrErrorMessage = "ErrorMessage"
	AttrUser         = "user"
	AttrStore        = "WfPersistanceDb"
)

// field binds one attribute name to typed accessors on a record.
type field[R any] struct {
	name     string
	optional bool
	get      func(r *R) string
	set      func(r *R, v string) error
}

func stringField[R any](name string, optional bool, ptr func(*R) *string) field[R] {
	return field[R]{
		name:     name,
		optional: optional,
		get:      func(r *R) string { return *ptr(r) },
		set: func(r *R, v string) error {
			*ptr(r) = v
			return nil
		},
	}
}

func timeField[R any](base func(*R) *api.TrackRecord) field[R] {
	return field[R]{
		name: AttrDateTime,
		get:  func(r *R) string { return base(r).At.Local().Format(TimeLayout) },
		set: func(r *R, v string) error {
			t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(v), time.Local)
			if err != nil {
				return err
			}
			base(r).At = t
			return nil
		},
	}
}

func intField[R any](name string, ptr func(*R) *int) field[R] {
	return field[R]{
		name: name,
		get:  func(r *R) string { return strconv.Itoa(*ptr(r)) },
		set: func(r *R, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ptr(r) = n
			return nil
		},
	}
}

var workflowFields = []field[api.WorkflowRecord]{
	timeField(wfBase),
	{
		name: AttrStatus,
		get:  func(r *api.WorkflowRecord) string { return string(r.Event) },
		set: func(r *api.WorkflowRecord, v string) error {
			ev, err := api.ParseWorkflowEvent(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			r.Event = ev
			return nil
		},
	},
	stringField(AttrHost, false, func(r *api.WorkflowRecord) *string { return &r.Host }),
	intField(AttrThreadID, func(r *api.WorkflowRecord) *int { return &r.ThreadID }),
	intField(AttrOrder, func(r *api.WorkflowRecord) *int { return &r.Order }),
}

var activityFields = []field[api.ActivityRecord]{
	timeField(actBase),
	stringField(AttrType, false, func(r *api.ActivityRecord) *string { return &r.TypeName }),
	stringField(AttrName, false, func(r *api.ActivityRecord) *string { return &r.QualifiedName }),
	stringField(AttrDisplayName, true, func(r *api.ActivityRecord) *string { return &r.DisplayName }),
	{
		name: AttrStatus,
		get:  func(r *api.ActivityRecord) string { return string(r.Status) },
		set: func(r *api.ActivityRecord, v string) error {
			st, err := api.ParseActivityStatus(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			r.Status = st
			return nil
		},
	},
	stringField(AttrApexStatus, true, func(r *api.ActivityRecord) *string { return &r.ExternalStatus }),
	stringField(AttrErrorCode, true, func(r *api.ActivityRecord) *string { return &r.ErrorCode }),
	stringField(AttrErrorMessage, true, func(r *api.ActivityRecord) *string { return &r.ErrorMessage }),
	stringField(AttrHost, false, func(r *api.ActivityRecord) *string { return &r.Host }),
	intField(AttrThreadID, func(r *api.ActivityRecord) *int { return &r.ThreadID }),
	intField(AttrOrder, func(r *api.ActivityRecord) *int { return &r.Order }),
	stringField(AttrUser, false, func(r *api.ActivityRecord) *string { return &r.User }),
}

func wfBase(r *api.WorkflowRecord) *api.TrackRecord  { return &r.TrackRecord }
func actBase(r *api.ActivityRecord) *api.TrackRecord { return &r.TrackRecord }

func encodeFields[R any](tag api.Kind, r *R, fields []field[R]) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(string(tag))
	for _, f := range fields {
		v := f.get(r)
		if f.optional && v == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(f.name)
		b.WriteString(`="`)
		b.WriteString(Escape(foldLines(v)))
		b.WriteByte('"')
	}
	b.WriteString("/>")
	return b.String()
}

func decodeFields[R any](kind api.Kind, attrs map[string]string, r *R, fields []field[R], onErr FieldErrorFunc) {
	for _, f := range fields {
		raw, ok := attrs[strings.ToLower(f.name)]
		if !ok {
			continue
		}
		v := Unescape(raw)
		if err := f.set(r, v); err != nil && onErr != nil {
			onErr(kind, f.name, v, fmt.Errorf("decode %s: %w", f.name, err))
		}
	}
}
