package api

import "time"

// Kind discriminates the record variants. For workflow and activity records
// it doubles as the tag name used in the tracking log.
type Kind string

const (
	KindWorkflow Kind = "WFTR"
	KindActivity Kind = "ATR"
	KindUser     Kind = "USER"
)

// Record is one tracked event. It is a closed variant: the only
// implementations are *WorkflowRecord, *ActivityRecord and *UserRecord.
type Record interface {
	Kind() Kind
	Base() TrackRecord

	sealed()
}

// TrackRecord holds the fields shared by every record.
type TrackRecord struct {
	// At is the event timestamp in local time.
	At time.Time
	// Order strictly increases within one instance.
	Order    int
	Host     string
	ThreadID int
}

// Base returns the shared record fields.
func (t TrackRecord) Base() TrackRecord { return t }

// WorkflowRecord is a workflow-level event.
type WorkflowRecord struct {
	TrackRecord
	Event WorkflowEvent
}

func (*WorkflowRecord) Kind() Kind { return KindWorkflow }
func (*WorkflowRecord) sealed()    {}

// ActivityRecord is an activity status transition.
type ActivityRecord struct {
	TrackRecord

	QualifiedName string
	TypeName      string
	Status        ActivityStatus

	// Optional fields; empty means absent and is never serialized.
	DisplayName    string
	ExternalStatus string
	ErrorCode      string
	ErrorMessage   string

	// User is always serialized, possibly empty.
	User string

	// StatusUpdate and Task are payloads attached by the host. Their fields
	// are promoted onto the record when it is written; they are never
	// serialized themselves.
	StatusUpdate TaskPayload
	Task         TaskPayload
}

func (*ActivityRecord) Kind() Kind { return KindActivity }
func (*ActivityRecord) sealed()    {}

// UserRecord is a free-form data point emitted by workflow code.
type UserRecord struct {
	TrackRecord
	Key  string
	Data string
}

func (*UserRecord) Kind() Kind { return KindUser }
func (*UserRecord) sealed()    {}
