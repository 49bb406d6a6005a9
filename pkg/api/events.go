package api

import "time"

// Event is a raw tracking event delivered by the workflow runtime. The only
// implementations are WorkflowTrackingEvent, ActivityTrackingEvent and
// UserTrackingEvent.
type Event interface {
	// EventTime is the UTC time the runtime observed the event.
	EventTime() time.Time
	// EventOrder is the per-instance order number assigned by the runtime.
	EventOrder() int

	event()
}

// WorkflowTrackingEvent reports a workflow-level lifecycle event.
type WorkflowTrackingEvent struct {
	At    time.Time
	Order int
	Event WorkflowEvent
}

// ActivityTrackingEvent reports an activity status transition.
type ActivityTrackingEvent struct {
	At            time.Time
	Order         int
	QualifiedName string
	TypeName      string
	Status        ActivityStatus

	// Body carries data extracted from the activity by the tracking profile.
	Body []DataItem
}

// UserTrackingEvent reports a data point emitted by workflow code.
type UserTrackingEvent struct {
	At    time.Time
	Order int
	Key   string
	Data  any
}

// DataItem is one named value extracted from an activity.
type DataItem struct {
	FieldName string
	Data      any
}

// Body field names the channel looks up to attach task payloads.
const (
	FieldTask                    = "Task"
	FieldRequestedTaskStatusInfo = "RequestedTaskStatusInfo"
)

// Item returns the data of the first item named field.
func (e ActivityTrackingEvent) Item(field string) (any, bool) {
	for _, it := range e.Body {
		if it.FieldName == field {
			return it.Data, true
		}
	}
	return nil, false
}

func (e WorkflowTrackingEvent) EventTime() time.Time { return e.At }
func (e WorkflowTrackingEvent) EventOrder() int      { return e.Order }
func (WorkflowTrackingEvent) event()                 {}

func (e ActivityTrackingEvent) EventTime() time.Time { return e.At }
func (e ActivityTrackingEvent) EventOrder() int      { return e.Order }
func (ActivityTrackingEvent) event()                 {}

func (e UserTrackingEvent) EventTime() time.Time { return e.At }
func (e UserTrackingEvent) EventOrder() int      { return e.Order }
func (UserTrackingEvent) event()                 {}
