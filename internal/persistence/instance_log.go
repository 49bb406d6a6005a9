package persistence

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/petrijr/wftrack/internal/codec"
	"github.com/petrijr/wftrack/pkg/api"
)

// InstanceLog is the append-only log file of one workflow instance.
//
// The file starts with a fixed-width header carrying the instance status,
// followed by one line per record and a closing tag. Each batch rewrites the
// closing tag and, when the batch changed the status, the header in place.
//
// InstanceLog takes no file locks. Callers must not persist two batches for
// the same instance concurrently; readers may read at any time.
type InstanceLog struct {
	path  string
	store string
}

// BatchResult describes a persisted batch.
type BatchResult struct {
	// Records are the records as written, after field promotion.
	Records []api.Record
	// Status is the status derived from the batch, or "" when no workflow
	// event in it affected the status.
	Status api.InstanceStatus
	// Created is true when the batch created the log file.
	Created bool
}

// NewInstanceLog returns the log at path. store is the persistence store name
// recorded in the header; it must fit the fixed header width.
func NewInstanceLog(path, store string) (*InstanceLog, error) {
	if err := codec.ValidateStore(store); err != nil {
		return nil, fmt.Errorf("store name %q: %w", store, err)
	}
	return &InstanceLog{path: path, store: store}, nil
}

// Path returns the log file path.
func (l *InstanceLog) Path() string { return l.path }

// Persist durably writes batch. ctx is only consulted before the file is
// opened; once writing starts the batch runs to completion.
func (l *InstanceLog) Persist(ctx context.Context, batch api.Batch) (BatchResult, error) {
	var res BatchResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	lines := make([]string, 0, len(batch))
	res.Records = make([]api.Record, 0, len(batch))
	for i, rec := range batch {
		switch r := rec.(type) {
		case *api.WorkflowRecord:
			if st, ok := api.DeriveStatus(r.Event); ok {
				res.Status = st
			}
		case *api.ActivityRecord:
			promoted := Promote(*r)
			rec = &promoted
		}
		line, err := codec.Encode(rec)
		if err != nil {
			return BatchResult{}, fmt.Errorf("encode record %d: %w", i, err)
		}
		lines = append(lines, line)
		res.Records = append(res.Records, rec)
	}

	created, err := l.write(lines, res.Status)
	if err != nil {
		return BatchResult{}, err
	}
	res.Created = created
	return res, nil
}

func (l *InstanceLog) write(lines []string, status api.InstanceStatus) (created bool, err error) {
	f, created, err := l.open()
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", l.path, cerr))
		}
	}()

	var offset int64
	if created {
		header, err := codec.EncodeHeader(api.StatusCreated, l.store)
		if err != nil {
			return created, err
		}
		if _, err := f.WriteAt([]byte(header), 0); err != nil {
			return created, fmt.Errorf("write header: %w", err)
		}
		offset = int64(len(header))
	} else if offset, err = appendOffset(f); err != nil {
		return created, err
	}

	w := bufio.NewWriter(io.NewOffsetWriter(f, offset))
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	w.WriteString(codec.ClosingLine)
	if err := w.Flush(); err != nil {
		return created, fmt.Errorf("write records: %w", err)
	}

	if status != "" {
		header, err := codec.EncodeHeader(status, l.store)
		if err != nil {
			return created, err
		}
		if _, err := f.WriteAt([]byte(header), 0); err != nil {
			return created, fmt.Errorf("rewrite header: %w", err)
		}
	}

	if err := f.Sync(); err != nil {
		return created, fmt.Errorf("sync %s: %w", l.path, err)
	}
	return created, nil
}

// open opens the log read-write, creating it when absent. created reports
// whether the file needs a header, which includes an existing empty file.
func (l *InstanceLog) open() (f *os.File, created bool, err error) {
	f, err = os.OpenFile(l.path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = os.OpenFile(l.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			f, err = os.OpenFile(l.path, os.O_RDWR, 0)
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", l.path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("stat %s: %w", l.path, err)
	}
	return f, fi.Size() == 0, nil
}

// appendOffset returns where the next record line goes: over the closing
// tag when the file ends with one, else at end of file.
func appendOffset(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	size := fi.Size()

	n := int64(len(codec.ClosingTag) + 2)
	if n > size {
		n = size
	}
	tail := make([]byte, n)
	if _, err := f.ReadAt(tail, size-n); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read tail: %w", err)
	}

	s := string(tail)
	for _, suffix := range []string{codec.ClosingLine, codec.ClosingTag + "\r\n", codec.ClosingTag} {
		if strings.HasSuffix(s, suffix) {
			return size - int64(len(suffix)), nil
		}
	}
	return size, nil
}

// Promote copies fields carried by the payloads attached to an activity
// record onto the record itself. The status-update request is applied
// first, then the task snapshot; absent payloads and fields are skipped.
func Promote(r api.ActivityRecord) api.ActivityRecord {
	if p := r.StatusUpdate; p != nil {
		if v, ok := p.UserID(); ok {
			r.User = v
		}
		if v, ok := p.TaskStatus(); ok {
			r.ExternalStatus = v
		}
		if v, ok := p.ErrorCode(); ok {
			r.ErrorCode = v
		}
		if v, ok := p.ErrorMessage(); ok {
			r.ErrorMessage = v
		}
	}
	if p := r.Task; p != nil {
		if v, ok := p.UserID(); ok {
			r.User = v
		}
		if v, ok := p.DisplayName(); ok {
			r.DisplayName = v
		}
	}
	return r
}
