package api

import (
	"fmt"
	"strings"
)

// WorkflowEvent identifies a workflow-level lifecycle event reported by the
// workflow runtime.
type WorkflowEvent string

const (
	EventCreated    WorkflowEvent = "Created"
	EventCompleted  WorkflowEvent = "Completed"
	EventIdle       WorkflowEvent = "Idle"
	EventSuspended  WorkflowEvent = "Suspended"
	EventResumed    WorkflowEvent = "Resumed"
	EventPersisted  WorkflowEvent = "Persisted"
	EventUnloaded   WorkflowEvent = "Unloaded"
	EventLoaded     WorkflowEvent = "Loaded"
	EventException  WorkflowEvent = "Exception"
	EventTerminated WorkflowEvent = "Terminated"
	EventAborted    WorkflowEvent = "Aborted"
	EventChanged    WorkflowEvent = "Changed"
	EventStarted    WorkflowEvent = "Started"
)

// AllWorkflowEvents lists every workflow event in declaration order.
var AllWorkflowEvents = []WorkflowEvent{
	EventCreated, EventCompleted, EventIdle, EventSuspended, EventResumed,
	EventPersisted, EventUnloaded, EventLoaded, EventException, EventTerminated,
	EventAborted, EventChanged, EventStarted,
}

// ParseWorkflowEvent converts text into a WorkflowEvent. Matching is
// case-insensitive.
func ParseWorkflowEvent(s string) (WorkflowEvent, error) {
	for _, ev := range AllWorkflowEvents {
		if strings.EqualFold(string(ev), s) {
			return ev, nil
		}
	}
	return "", fmt.Errorf("unknown workflow event %q", s)
}

// InstanceStatus is the last known status of a workflow instance, as
// recorded in the header of its tracking log.
type InstanceStatus string

const (
	StatusRunning    InstanceStatus = "Running"
	StatusCompleted  InstanceStatus = "Completed"
	StatusSuspended  InstanceStatus = "Suspended"
	StatusTerminated InstanceStatus = "Terminated"
	StatusCreated    InstanceStatus = "Created"
)

// AllInstanceStatuses lists every instance status.
var AllInstanceStatuses = []InstanceStatus{
	StatusRunning, StatusCompleted, StatusSuspended, StatusTerminated, StatusCreated,
}

// ParseInstanceStatus converts text into an InstanceStatus. Matching is
// case-insensitive.
func ParseInstanceStatus(s string) (InstanceStatus, error) {
	for _, st := range AllInstanceStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown instance status %q", s)
}

// DeriveStatus maps a workflow event to the instance status it implies.
//
// ok is false for EventPersisted: a persistence checkpoint is not a status
// and must never overwrite the previously observed one.
func DeriveStatus(ev WorkflowEvent) (status InstanceStatus, ok bool) {
	switch ev {
	case EventCreated:
		return StatusCreated, true
	case EventCompleted:
		return StatusCompleted, true
	case EventSuspended:
		return StatusSuspended, true
	case EventTerminated:
		return StatusTerminated, true
	case EventPersisted:
		return "", false
	default:
		return StatusRunning, true
	}
}

// ActivityStatus is the execution status of an activity.
type ActivityStatus string

const (
	ActivityInitialized  ActivityStatus = "Initialized"
	ActivityExecuting    ActivityStatus = "Executing"
	ActivityCanceling    ActivityStatus = "Canceling"
	ActivityClosed       ActivityStatus = "Closed"
	ActivityCompensating ActivityStatus = "Compensating"
	ActivityFaulting     ActivityStatus = "Faulting"
)

// AllActivityStatuses lists every activity status in lifecycle order.
var AllActivityStatuses = []ActivityStatus{
	ActivityInitialized, ActivityExecuting, ActivityCanceling,
	ActivityClosed, ActivityCompensating, ActivityFaulting,
}

// ParseActivityStatus converts text into an ActivityStatus. Matching is
// case-insensitive.
func ParseActivityStatus(s string) (ActivityStatus, error) {
	for _, st := range AllActivityStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown activity status %q", s)
}
