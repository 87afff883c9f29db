package evidence

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/emenda-labs/warden/core/model"
	"github.com/stretchr/testify/require"
)

func clockAt(t time.Time) func() model.Timestamp {
	return func() model.Timestamp { return t }
}

func TestAppend_AssignsIDAndSequence(t *testing.T) {
	l := New("", clockAt(time.Now()))

	e1, err := l.Append(model.Event{Type: model.EventMissionCreated, MissionID: "m1"})
	require.NoError(t, err)
	require.NotEmpty(t, e1.ID)
	require.Equal(t, uint64(1), e1.Seq())

	e2, err := l.Append(model.Event{Type: model.EventCheckpointApproved, MissionID: "m1"})
	require.NoError(t, err)
	require.Equal(t, uint64(2), e2.Seq())
}

func TestProvenance_OrdersByTimestampThenSequence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New("", clockAt(base))

	_, err := l.Append(model.Event{Type: model.EventMissionCreated, MissionID: "m1", Timestamp: base})
	require.NoError(t, err)
	_, err = l.Append(model.Event{Type: model.EventBatchExecuted, MissionID: "m1", Timestamp: base})
	require.NoError(t, err)
	_, err = l.Append(model.Event{Type: model.EventRollbackApplied, MissionID: "m1", Timestamp: base.Add(time.Second)})
	require.NoError(t, err)

	graph := l.Provenance("m1")
	require.Len(t, graph.Nodes, 3)
	require.Equal(t, model.EventMissionCreated, graph.Nodes[0].Event.Type)
	require.Equal(t, model.EventBatchExecuted, graph.Nodes[1].Event.Type)
	require.Equal(t, model.EventRollbackApplied, graph.Nodes[2].Event.Type)
	require.Equal(t, graph.Nodes[1].Event.ID, graph.Nodes[0].NextID)
	require.Equal(t, graph.Nodes[2].Event.ID, graph.Nodes[1].NextID)
	require.Empty(t, graph.Nodes[2].NextID)

	for i := 0; i < len(graph.Nodes)-1; i++ {
		require.False(t, graph.Nodes[i+1].Event.Timestamp.Before(graph.Nodes[i].Event.Timestamp))
	}
}

func TestArchive_ContainsRequiredEntries(t *testing.T) {
	l := New("", clockAt(time.Now()))
	_, err := l.Append(model.Event{Type: model.EventMissionCreated, MissionID: "m1"})
	require.NoError(t, err)

	cs := &model.ChangeSpec{ID: "CS-1"}
	pack := l.BuildAuditPack("m1", cs, AuditPackExtras{})

	data, err := Archive(pack)
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	require.True(t, names["changespec.json"])
	require.True(t, names["provenance.json"])
	require.True(t, names["events.json"])
}

func TestVerifyAuditPack(t *testing.T) {
	l := New("", clockAt(time.Now()))
	pack := l.BuildAuditPack("m1", nil, AuditPackExtras{})
	require.True(t, VerifyAuditPack(pack))

	pack.Verified = false
	require.False(t, VerifyAuditPack(pack))
}
