package api

import "time"

// InstanceHistory is the execution history of one workflow instance as
// loaded from its tracking log.
type InstanceHistory struct {
	// Path is the tracking log the history was loaded from.
	Path       string
	InstanceID string
	Status     InstanceStatus
	Store      string
	LastWrite  time.Time

	// Records holds workflow, activity and user records in file order.
	Records []Record
}

// WorkflowRecords returns only the workflow records.
func (h *InstanceHistory) WorkflowRecords() []*WorkflowRecord {
	return filterRecords[*WorkflowRecord](h)
}

// ActivityRecords returns only the activity records.
func (h *InstanceHistory) ActivityRecords() []*ActivityRecord {
	return filterRecords[*ActivityRecord](h)
}

// UserRecords returns only the user data records.
func (h *InstanceHistory) UserRecords() []*UserRecord {
	return filterRecords[*UserRecord](h)
}

func filterRecords[T Record](h *InstanceHistory) []T {
	out := make([]T, 0)
	if h == nil {
		return out
	}
	for _, r := range h.Records {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// CheckOrder verifies that the order numbers of workflow and activity
// records never decrease. User records carry no order in the log and are
// skipped. It returns an *OrderError for the first violation.
func (h *InstanceHistory) CheckOrder() error {
	prev, seen := 0, false
	for i, r := range h.Records {
		if r.Kind() == KindUser {
			continue
		}
		order := r.Base().Order
		if seen && order < prev {
			return &OrderError{Index: i, Previous: prev, Current: order}
		}
		prev, seen = order, true
	}
	return nil
}
