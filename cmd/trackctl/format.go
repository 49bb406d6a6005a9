package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

// Output formats accepted by -o.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", f)
	}
}

type recordView struct {
	Kind     string    `json:"kind" yaml:"kind"`
	Order    int       `json:"order" yaml:"order"`
	Time     time.Time `json:"time" yaml:"time"`
	Host     string    `json:"host,omitempty" yaml:"host,omitempty"`
	ThreadID int       `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`

	Event string `json:"event,omitempty" yaml:"event,omitempty"`

	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Type           string `json:"type,omitempty" yaml:"type,omitempty"`
	Status         string `json:"status,omitempty" yaml:"status,omitempty"`
	DisplayName    string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	ExternalStatus string `json:"external_status,omitempty" yaml:"external_status,omitempty"`
	ErrorCode      string `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	User           string `json:"user,omitempty" yaml:"user,omitempty"`

	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}

type historyView struct {
	InstanceID string       `json:"instance_id" yaml:"instance_id"`
	Path       string       `json:"path" yaml:"path"`
	Status     string       `json:"status" yaml:"status"`
	Store      string       `json:"store" yaml:"store"`
	LastWrite  time.Time    `json:"last_write" yaml:"last_write"`
	Records    []recordView `json:"records" yaml:"records"`
}

type instanceView struct {
	InstanceID string    `json:"instance_id" yaml:"instance_id"`
	Status     string    `json:"status" yaml:"status"`
	Records    int       `json:"records" yaml:"records"`
	LastWrite  time.Time `json:"last_write" yaml:"last_write"`
}

func viewRecord(r api.Record) recordView {
	b := r.Base()
	v := recordView{
		Kind:     strings.ToLower(kindName(r.Kind())),
		Order:    b.Order,
		Time:     b.At,
		Host:     b.Host,
		ThreadID: b.ThreadID,
	}
	switch rec := r.(type) {
	case *api.WorkflowRecord:
		v.Event = string(rec.Event)
	case *api.ActivityRecord:
		v.Name = rec.QualifiedName
		v.Type = rec.TypeName
		v.Status = string(rec.Status)
		v.DisplayName = rec.DisplayName
		v.ExternalStatus = rec.ExternalStatus
		v.ErrorCode = rec.ErrorCode
		v.ErrorMessage = rec.ErrorMessage
		v.User = rec.User
	case *api.UserRecord:
		v.Key = rec.Key
		v.Data = rec.Data
	}
	return v
}

func kindName(k api.Kind) string {
	switch k {
	case api.KindWorkflow:
		return "workflow"
	case api.KindActivity:
		return "activity"
	case api.KindUser:
		return "user"
	default:
		return string(k)
	}
}

func viewRecords(records []api.Record) []recordView {
	out := make([]recordView, 0, len(records))
	for _, r := range records {
		out = append(out, viewRecord(r))
	}
	return out
}

func viewHistory(h *api.InstanceHistory) historyView {
	return historyView{
		InstanceID: h.InstanceID,
		Path:       h.Path,
		Status:     string(h.Status),
		Store:      h.Store,
		LastWrite:  h.LastWrite,
		Records:    viewRecords(h.Records),
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func describe(v recordView) string {
	switch v.Kind {
	case "workflow":
		return v.Event
	case "activity":
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s) %s", v.Name, v.Type, v.Status)
		if v.User != "" {
			fmt.Fprintf(&b, " user=%s", v.User)
		}
		if v.ErrorCode != "" {
			fmt.Fprintf(&b, " error=%s", v.ErrorCode)
		}
		return b.String()
	case "user":
		return v.Key + "=" + v.Data
	default:
		return ""
	}
}

func writeRecordTable(w io.Writer, records []recordView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tTIME\tKIND\tDETAIL")
	for _, r := range records {
		ts := ""
		if !r.Time.IsZero() {
			ts = r.Time.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Order, ts, r.Kind, describe(r))
	}
	return tw.Flush()
}

func writeHistoryText(w io.Writer, h historyView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Instance\t%s\n", h.InstanceID)
	fmt.Fprintf(tw, "Status\t%s\n", h.Status)
	fmt.Fprintf(tw, "Store\t%s\n", h.Store)
	fmt.Fprintf(tw, "Last write\t%s\n", h.LastWrite.Format(time.DateTime))
	fmt.Fprintf(tw, "Records\t%d\n", len(h.Records))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return writeRecordTable(w, h.Records)
}

func writeInstanceTable(w io.Writer, instances []instanceView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tSTATUS\tRECORDS\tLAST WRITE")
	for _, in := range instances {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", in.InstanceID, in.Status, in.Records, in.LastWrite.Format(time.DateTime))
	}
	return tw.Flush()
}

func viewIndexed(in persistence.IndexedInstance) instanceView {
	return instanceView{
		InstanceID: in.InstanceID,
		Status:     string(in.Status),
		Records:    in.Records,
		LastWrite:  in.UpdatedAt,
	}
}
