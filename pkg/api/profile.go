package api

import "slices"

// ProfileVersion is the version of the profile returned by DefaultProfile.
const ProfileVersion = "1.0.0.0"

// TrackingProfile selects which runtime events a channel records.
type TrackingProfile struct {
	Version          string
	WorkflowEvents   []WorkflowEvent
	ActivityStatuses []ActivityStatus
	UserData         bool
}

// DefaultProfile tracks every workflow event, every activity status and all
// user data.
func DefaultProfile() TrackingProfile {
	return TrackingProfile{
		Version:          ProfileVersion,
		WorkflowEvents:   slices.Clone(AllWorkflowEvents),
		ActivityStatuses: slices.Clone(AllActivityStatuses),
		UserData:         true,
	}
}

// Tracks reports whether ev is selected by the profile.
func (p TrackingProfile) Tracks(ev Event) bool {
	switch e := ev.(type) {
	case WorkflowTrackingEvent:
		return slices.Contains(p.WorkflowEvents, e.Event)
	case ActivityTrackingEvent:
		return slices.Contains(p.ActivityStatuses, e.Status)
	case UserTrackingEvent:
		return p.UserData
	default:
		return false
	}
}
