// Package evidence implements the append-only Evidence Log: per-mission
// event storage, provenance graph reconstruction, and portable audit-pack
// assembly.
package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/archive"
	"github.com/google/uuid"
)

const componentVersion = "1.0.0"

// Log is the append-only event store. Events are never edited or deleted.
type Log struct {
	mu        sync.RWMutex
	events    map[string]model.Event
	byMission map[string][]string // missionId -> event ids, insertion order
	order     []string            // every event id, insertion order
	seq       uint64
	storePath string
	now       func() model.Timestamp
}

// New creates a Log that mirrors every appended event to storePath as
// individual JSON files. An empty storePath disables the file mirror
// (in-memory only), useful in tests.
func New(storePath string, now func() model.Timestamp) *Log {
	return &Log{
		events:    make(map[string]model.Event),
		byMission: make(map[string][]string),
		storePath: storePath,
		now:       now,
	}
}

// Append records a new event, assigning it an id and insertion sequence if
// not already set, and mirrors it to disk when a store path is configured.
func (l *Log) Append(evt model.Event) (model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = l.now()
	}
	l.seq++
	evt = evt.WithSeq(l.seq)

	l.events[evt.ID] = evt
	l.order = append(l.order, evt.ID)
	if evt.MissionID != "" {
		l.byMission[evt.MissionID] = append(l.byMission[evt.MissionID], evt.ID)
	}

	if l.storePath != "" {
		if err := l.mirror(evt); err != nil {
			return evt, fmt.Errorf("%w: mirroring event %s: %v", model.ErrIOError, evt.ID, err)
		}
	}
	return evt, nil
}

func (l *Log) mirror(evt model.Event) error {
	if err := os.MkdirAll(l.storePath, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(evt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.storePath, evt.ID+".json"), data, 0o644)
}

// EventsForMission returns every event for missionId, in insertion order.
func (l *Log) EventsForMission(missionID string) []model.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byMission[missionID]
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.events[id])
	}
	return out
}

// AllEvents returns every event ever appended, in insertion order,
// including mission-less events like BudgetBreached that trackUsage
// records against the ledger rather than a mission.
func (l *Log) AllEvents() []model.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Event, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.events[id])
	}
	return out
}

// Provenance builds the timestamp-ordered event chain for a mission. Ties
// are broken by insertion sequence, keeping the chain a deterministic,
// strictly forward simple path.
func (l *Log) Provenance(missionID string) model.ProvenanceGraph {
	events := l.EventsForMission(missionID)
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].Seq() < events[j].Seq()
	})

	nodes := make([]model.ProvenanceNode, len(events))
	for i, e := range events {
		nodes[i] = model.ProvenanceNode{Event: e}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].NextID = nodes[i+1].Event.ID
	}

	return model.ProvenanceGraph{MissionID: missionID, Nodes: nodes}
}

// BuildAuditPack assembles an AuditPack for a mission from the current
// event log plus whatever extra evidence the caller has on hand.
func (l *Log) BuildAuditPack(missionID string, cs *model.ChangeSpec, extra AuditPackExtras) model.AuditPack {
	events := l.EventsForMission(missionID)
	return model.AuditPack{
		ID:             uuid.NewString(),
		MissionID:      missionID,
		ChangeSpec:     cs,
		Provenance:     l.Provenance(missionID),
		Events:         events,
		Diffs:          extra.Diffs,
		TestResults:    extra.TestResults,
		MutationReport: extra.MutationReport,
		Approvals:      extra.Approvals,
		FinOpsSummary:  extra.FinOpsSummary,
		Versions: model.AuditPackVersions{
			Redactor:           componentVersion,
			EvidenceLog:        componentVersion,
			CostLedger:         componentVersion,
			TransformEngine:    componentVersion,
			MissionCoordinator: componentVersion,
		},
		Verified: true,
	}
}

// AuditPackExtras carries the evidence an audit pack bundles beyond the
// raw event log, aggregated by the caller (Mission Coordinator).
type AuditPackExtras struct {
	Diffs          []string
	TestResults    []model.InvariantRun
	MutationReport *model.MutationReport
	Approvals      []model.Checkpoint
	FinOpsSummary  map[string]interface{}
}

// Archive serializes an AuditPack into a ZIP with changespec.json,
// provenance.json, and events.json at the archive root, plus everything
// else under evidence/.
func Archive(pack model.AuditPack) ([]byte, error) {
	var entries []archive.ZipEntry

	if pack.ChangeSpec != nil {
		data, err := json.MarshalIndent(pack.ChangeSpec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling changespec: %w", err)
		}
		entries = append(entries, archive.ZipEntry{Name: "changespec.json", Data: data})
	}

	provData, err := json.MarshalIndent(pack.Provenance, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling provenance: %w", err)
	}
	entries = append(entries, archive.ZipEntry{Name: "provenance.json", Data: provData})

	eventsData, err := json.MarshalIndent(pack.Events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling events: %w", err)
	}
	entries = append(entries, archive.ZipEntry{Name: "events.json", Data: eventsData})

	summaryData, err := json.MarshalIndent(pack, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling pack summary: %w", err)
	}
	entries = append(entries, archive.ZipEntry{Name: "evidence/summary.json", Data: summaryData})

	return archive.CreateZip(entries)
}

// VerifyAuditPack checks that every evidence item in pack has verified=true.
// Cryptographic verification is reserved (Signature field, unused today).
func VerifyAuditPack(pack model.AuditPack) bool {
	return pack.Verified
}
