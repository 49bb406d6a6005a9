// Package api contains the core types shared by the wftrack tracking
// subsystem. It defines the record model written to instance logs, the
// runtime events consumed from a workflow engine, and the collaborator
// interfaces a host runtime implements.
//
// Most users interact with the higher-level wftrack package, which re-exports
// selected types and helpers from this package.
//
// # Records
//
// Every line of an instance log is a Record. The Record interface is sealed;
// the only implementations are WorkflowRecord, ActivityRecord and UserRecord.
// Consumers switch on the concrete type:
//
//	switch r := rec.(type) {
//	case *api.WorkflowRecord:
//	case *api.ActivityRecord:
//	case *api.UserRecord:
//	}
//
// Workflow records drive the instance status through DeriveStatus. A
// Persisted event is a checkpoint and never changes the status.
//
// # Collaborators
//
// The host runtime supplies live activity trees (Activity, Composite), task
// payloads attached to activity events (TaskPayload) and drives channels
// through the two-phase PendingWork contract.
//
// # Observability
//
// Observer receives callbacks for committed and failed batches, persisted
// definitions and index failures. NoopObserver, CompositeObserver,
// LoggingObserver and BasicMetrics are ready-made implementations.
package api
