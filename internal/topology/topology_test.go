package topology

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/wftrack/pkg/api"
)

// sampleTree builds
//
//	root
//	├── intake
//	├── review (composite)
//	│   ├── approve
//	│   └── audit (disabled)
//	└── archive (disabled composite)
//	    └── purge
func sampleTree() *api.Node {
	review := api.NewCompositeNode("SequenceActivity", "review").Add(
		api.NewNode("ApprovalActivity", "approve"),
		&api.Node{Type: "AuditActivity", Name: "audit", Disabled: true},
	)
	archive := api.NewCompositeNode("SequenceActivity", "archive").Add(
		api.NewNode("CodeActivity", "purge"),
	)
	archive.Disabled = true

	return api.NewCompositeNode("ApprovalWorkflow", "root").Add(
		api.NewNode("CodeActivity", "intake"),
		review,
		archive,
	)
}

func TestBuild_ExcludesDisabledSubtrees(t *testing.T) {
	s := Build(sampleTree())

	require.NotNil(t, s)
	require.Equal(t, 4, s.Count())
	require.Nil(t, s.Parent)
	require.Equal(t, "ApprovalWorkflow", s.TypeName)

	require.Len(t, s.Children, 2)
	require.Equal(t, "intake", s.Children[0].QualifiedName)
	require.Equal(t, "review", s.Children[1].QualifiedName)

	approve := s.Find("approve")
	require.NotNil(t, approve)
	require.Same(t, s.Find("review"), approve.Parent)

	require.Nil(t, s.Find("audit"))
	require.Nil(t, s.Find("archive"))
	require.Nil(t, s.Find("purge"))
}

func TestBuild_NilRoot(t *testing.T) {
	require.Nil(t, Build(nil))
}

func TestBuild_LeafRoot(t *testing.T) {
	s := Build(api.NewNode("CodeActivity", "only"))
	require.Equal(t, 1, s.Count())
}

func TestDefinition_RoundTrip(t *testing.T) {
	built := time.Date(2024, time.March, 14, 15, 4, 5, 0, time.Local)
	s := Build(sampleTree())

	doc, err := MarshalDefinition(s, built)
	require.NoError(t, err)

	text := string(doc)
	require.Contains(t, text, `WfCompliteTime="03-14-2024 03:04:05 PM"`)
	require.Equal(t, 1, strings.Count(text, "WfCompliteTime"))
	require.Contains(t, text, "\n\t<Activity")

	got, stamp, err := UnmarshalDefinition(doc)
	require.NoError(t, err)
	require.True(t, built.Equal(stamp))
	require.Equal(t, s.Count(), got.Count())
	require.Equal(t, "review", got.Find("approve").Parent.QualifiedName)
}

func TestUnmarshalDefinition_Invalid(t *testing.T) {
	_, _, err := UnmarshalDefinition([]byte("not xml"))
	require.Error(t, err)

	_, _, err = UnmarshalDefinition([]byte(`<Activity Type="T" QualifiedName="q" WfCompliteTime="yesterday"></Activity>`))
	require.Error(t, err)
}

func TestIsNewOrUpdated(t *testing.T) {
	built := time.Date(2024, time.March, 14, 9, 30, 0, 0, time.Local)
	doc, err := MarshalDefinition(Build(sampleTree()), built)
	require.NoError(t, err)

	require.False(t, IsNewOrUpdated(doc, built))
	require.False(t, IsNewOrUpdated(doc, built.Add(400*time.Millisecond)))
	require.True(t, IsNewOrUpdated(doc, built.Add(time.Second)))
	require.True(t, IsNewOrUpdated(nil, built))
	require.True(t, IsNewOrUpdated([]byte("<broken"), built))

	unstamped, err := MarshalDefinition(Build(sampleTree()), time.Time{})
	require.NoError(t, err)
	require.True(t, IsNewOrUpdated(unstamped, built))
}

func TestBuildTimestamp_NotInFuture(t *testing.T) {
	ts := BuildTimestamp()
	require.False(t, ts.After(time.Now().Add(time.Minute)))
}
