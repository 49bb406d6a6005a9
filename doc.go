// Package wftrack persists the execution history of workflow instances to
// plain files and reads it back.
//
// A workflow runtime reports lifecycle events: an instance was created or
// completed, an activity changed status, workflow code emitted a data
// point. wftrack turns them into an append-only tracking log per instance,
// a definition document describing the workflow's activity topology, and
// optionally mirrors every committed batch into a queryable record index.
//
// # Core Concepts
//
//  1. Service
//  2. Channel
//  3. QueryManager
//  4. RecordIndex
//  5. TreeBuilder
//
// # Service and Channel
//
// A Service owns the tracking directory. For every running instance the host
// opens a Channel:
//
//	svc, err := wftrack.NewService(wftrack.ServiceConfig{
//	    LogLocation:      "/var/lib/tracking",
//	    ConnectionString: "Data Source=db01;Initial Catalog=WorkflowStore;",
//	})
//	ch, err := svc.OpenChannel(ctx, wftrack.ChannelParams{InstanceID: id, Root: root})
//
// The runtime feeds events into the channel with OnEvent and drives the
// two-phase commit with MustCommit, Commit and Complete, or calls Flush to run
// the whole cycle over the pending batch.
//
// Opening a channel with a Root activity writes the definition document
// "<id>_def.xml" whenever the running build differs from the one that wrote
// the existing document.
//
// # Tracking log format
//
// Each instance log "<id>.xml" starts with a fixed-width header holding the
// current instance status and the store name. The header is rewritten in
// place after every batch that changes the status, so its byte length never
// changes. Records follow, one per line:
//
//	<WorkFlowInfo wfStatus="Completed" WfPersistanceDb="WorkflowStore" >
//	<WFTR datetime="03-01-2024 09:30:00" wfStatus="Created" WfHost="web01-trackd" ThreadId="7" order="1"/>
//	<ATR datetime="03-01-2024 09:30:02" Type="ApprovalActivity" name="approve" wfStatus="Closed" WfHost="web01-trackd" ThreadId="7" order="2" user="approver"/>
//	<Amount:1200/>
//	</WorkFlowInfo>
//
// Every batch is written over the closing tag and ends with a new one.
//
// # Reading
//
// QueryManager loads logs back into InstanceHistory values, lists the
// instance logs of a directory, loads whole directories concurrently and
// watches a directory for writes. Decoding is tolerant: unparsable fields
// keep their zero value and unknown lines are skipped.
//
// # Record index
//
// A RecordIndex receives a copy of every committed batch. Memory, SQLite,
// PostgreSQL, Redis and MongoDB implementations are available; Open selects
// one from configuration. The instance logs stay authoritative.
//
// # Observability
//
// Observers receive batch, definition and index callbacks.
// LoggingObserver writes them to log/slog, BasicMetrics counts them and
// CompositeObserver fans out to several observers.
package wftrack
