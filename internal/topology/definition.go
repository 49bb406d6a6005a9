package topology

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petrijr/wftrack/pkg/api"
)

// CompileTimeLayout formats the build timestamp stored on the root element.
const CompileTimeLayout = "01-02-2006 03:04:05 PM"

var errEmptyDefinition = errors.New("definition document has no root activity")

type activityElement struct {
	XMLName       xml.Name          `xml:"Activity"`
	Type          string            `xml:"Type,attr"`
	QualifiedName string            `xml:"QualifiedName,attr"`
	CompileTime   string            `xml:"WfCompliteTime,attr,omitempty"`
	Children      []activityElement `xml:"Activity"`
}

func toElement(s *api.ActivitySummary) activityElement {
	el := activityElement{Type: s.TypeName, QualifiedName: s.QualifiedName}
	for _, c := range s.Children {
		el.Children = append(el.Children, toElement(c))
	}
	return el
}

func fromElement(el activityElement) *api.ActivitySummary {
	s := &api.ActivitySummary{TypeName: el.Type, QualifiedName: el.QualifiedName}
	for _, c := range el.Children {
		s.AddChild(fromElement(c))
	}
	return s
}

// MarshalDefinition renders summary as a tab-indented tree of Activity
// elements. Only the root carries the build timestamp; a zero buildTime is
// omitted.
func MarshalDefinition(summary *api.ActivitySummary, buildTime time.Time) ([]byte, error) {
	if summary == nil {
		return nil, errEmptyDefinition
	}
	root := toElement(summary)
	if !buildTime.IsZero() {
		root.CompileTime = buildTime.Local().Format(CompileTimeLayout)
	}
	out, err := xml.MarshalIndent(root, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	return append(out, '\n'), nil
}

// UnmarshalDefinition rebuilds the summary tree and the build timestamp from
// a definition document. The timestamp is zero when the root carries none.
func UnmarshalDefinition(data []byte) (*api.ActivitySummary, time.Time, error) {
	var root activityElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal definition: %w", err)
	}
	if root.Type == "" && root.QualifiedName == "" {
		return nil, time.Time{}, errEmptyDefinition
	}

	var built time.Time
	if s := strings.TrimSpace(root.CompileTime); s != "" {
		t, err := time.ParseInLocation(CompileTimeLayout, s, time.Local)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("unmarshal definition: build time: %w", err)
		}
		built = t
	}
	return fromElement(root), built, nil
}
