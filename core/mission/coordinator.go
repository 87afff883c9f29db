// Package mission implements the Mission Coordinator (C5): the four
// checkpoint state machine, reversible batches backed by pre-image
// snapshots, and the applyCheckpoint pipeline that wires the Redactor
// and Transform Engine together under a single audited operation.
package mission

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/core/redact"
	"github.com/emenda-labs/warden/core/transform"
	"github.com/google/uuid"
)

// Coordinator owns mission and snapshot state in memory, guarded by a
// single mutex. Approving an out-of-order checkpoint is permitted: the
// API intentionally does not enforce checkpoint sequencing in v1.
// Creating a batch likewise does not require the execute checkpoint to be
// approved first. Both are accepted looseness, not oversights.
type Coordinator struct {
	mu        sync.RWMutex
	missions  map[string]*model.Mission
	snapshots map[string]model.Snapshot

	redactor  *redact.Engine
	transform *transform.Engine
	log       *evidence.Log
	logger    *slog.Logger
	now       func() model.Timestamp
}

// New creates a Mission Coordinator wired to the given Redactor,
// Transform Engine, and Evidence Log.
func New(redactor *redact.Engine, transformEngine *transform.Engine, log *evidence.Log, logger *slog.Logger, now func() model.Timestamp) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Coordinator{
		missions:  make(map[string]*model.Mission),
		snapshots: make(map[string]model.Snapshot),
		redactor:  redactor,
		transform: transformEngine,
		log:       log,
		logger:    logger,
		now:       now,
	}
}

// CreateMission initializes the four checkpoints in pending and emits
// MissionCreated.
func (c *Coordinator) CreateMission(title string, risk model.RiskLevel) (model.Mission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	checkpoints := make([]model.Checkpoint, len(model.CheckpointOrder))
	for i, name := range model.CheckpointOrder {
		checkpoints[i] = model.Checkpoint{
			Name:      name,
			Status:    model.CheckpointPending,
			Actor:     model.ActorHuman,
			ExecState: model.ExecPending,
		}
	}

	now := c.now()
	m := &model.Mission{
		MissionID:   uuid.NewString(),
		Title:       title,
		Risk:        risk,
		Checkpoints: checkpoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.missions[m.MissionID] = m

	if _, err := c.log.Append(model.Event{
		Type:      model.EventMissionCreated,
		MissionID: m.MissionID,
		Timestamp: now,
		Data:      map[string]interface{}{"title": title, "risk": string(risk)},
	}); err != nil {
		c.logger.Warn("mission: failed to append MissionCreated event", "mission", m.MissionID, "error", err)
	}

	return *m, nil
}

// GetMission returns a copy of the mission, or model.ErrMissionNotFound.
func (c *Coordinator) GetMission(missionID string) (model.Mission, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.missions[missionID]
	if !ok {
		return model.Mission{}, model.ErrMissionNotFound
	}
	return *m, nil
}

// ApproveCheckpoint sets a checkpoint to approved. It must currently be
// pending; approving checkpoints out of the plan/execute/verify/finalize
// order is allowed.
func (c *Coordinator) ApproveCheckpoint(missionID string, name model.CheckpointName) (model.Mission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.missions[missionID]
	if !ok {
		return model.Mission{}, model.ErrMissionNotFound
	}
	cp := m.Checkpoint(name)
	if cp == nil {
		return model.Mission{}, model.ErrCheckpointNotFound
	}
	if cp.Status != model.CheckpointPending {
		return model.Mission{}, fmt.Errorf("%w: checkpoint %s is %s, not pending", model.ErrInvalidMission, name, cp.Status)
	}

	cp.Status = model.CheckpointApproved
	m.UpdatedAt = c.now()

	if _, err := c.log.Append(model.Event{
		Type:      model.EventCheckpointApproved,
		MissionID: missionID,
		Timestamp: m.UpdatedAt,
		Data:      map[string]interface{}{"checkpoint": string(name)},
	}); err != nil {
		c.logger.Warn("mission: failed to append CheckpointApproved event", "mission", missionID, "error", err)
	}

	return *m, nil
}

// RejectCheckpoint terminates a pending checkpoint as rejected.
func (c *Coordinator) RejectCheckpoint(missionID string, name model.CheckpointName) (model.Mission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.missions[missionID]
	if !ok {
		return model.Mission{}, model.ErrMissionNotFound
	}
	cp := m.Checkpoint(name)
	if cp == nil {
		return model.Mission{}, model.ErrCheckpointNotFound
	}

	cp.Status = model.CheckpointRejected
	m.UpdatedAt = c.now()

	if _, err := c.log.Append(model.Event{
		Type:      model.EventCheckpointRejected,
		MissionID: missionID,
		Timestamp: m.UpdatedAt,
		Data:      map[string]interface{}{"checkpoint": string(name)},
	}); err != nil {
		c.logger.Warn("mission: failed to append CheckpointRejected event", "mission", missionID, "error", err)
	}

	return *m, nil
}

// CreateBatch appends a new reversible batch to the execute checkpoint
// and captures a pre-image snapshot of fileContents before returning.
// Batch creation does not require the execute checkpoint to be approved.
func (c *Coordinator) CreateBatch(missionID string, fileContents map[string]string) (model.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.missions[missionID]
	if !ok {
		return model.Batch{}, model.ErrMissionNotFound
	}
	cp := m.Checkpoint(model.CheckpointExecute)
	if cp == nil {
		return model.Batch{}, model.ErrCheckpointNotFound
	}

	snapshot := model.Snapshot{
		ID:        uuid.NewString(),
		Files:     copyFiles(fileContents),
		Timestamp: c.now(),
	}
	batch := model.Batch{
		ID:          uuid.NewString(),
		Reversible:  true,
		SnapshotRef: snapshot.ID,
		Status:      model.BatchActive,
	}
	snapshot.CheckpointOrBatchID = batch.ID

	c.snapshots[snapshot.ID] = snapshot
	cp.Batches = append(cp.Batches, batch)
	m.UpdatedAt = c.now()

	if _, err := c.log.Append(model.Event{
		Type:      model.EventBatchExecuted,
		MissionID: missionID,
		Timestamp: m.UpdatedAt,
		Data:      map[string]interface{}{"batchId": batch.ID},
	}); err != nil {
		c.logger.Warn("mission: failed to append BatchExecuted event", "mission", missionID, "error", err)
	}

	return batch, nil
}

// RollbackBatch restores the batch's pre-image snapshot verbatim into
// writeFile and marks the batch rolled_back.
func (c *Coordinator) RollbackBatch(missionID, batchID string, writeFile func(path, content string) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.missions[missionID]
	if !ok {
		return model.ErrMissionNotFound
	}
	cp := m.Checkpoint(model.CheckpointExecute)
	if cp == nil {
		return model.ErrCheckpointNotFound
	}

	var batch *model.Batch
	for i := range cp.Batches {
		if cp.Batches[i].ID == batchID {
			batch = &cp.Batches[i]
			break
		}
	}
	if batch == nil {
		return model.ErrBatchNotFound
	}

	snapshot, ok := c.snapshots[batch.SnapshotRef]
	if !ok {
		return fmt.Errorf("%w: snapshot %s for batch %s", model.ErrBatchNotFound, batch.SnapshotRef, batchID)
	}

	if err := c.restoreSnapshot(snapshot, writeFile); err != nil {
		return err
	}

	batch.Status = model.BatchRolledBack
	m.UpdatedAt = c.now()

	if _, err := c.log.Append(model.Event{
		Type:      model.EventRollbackApplied,
		MissionID: missionID,
		Timestamp: m.UpdatedAt,
		Data:      map[string]interface{}{"batchId": batchID},
	}); err != nil {
		c.logger.Warn("mission: failed to append RollbackApplied event", "mission", missionID, "error", err)
	}

	return nil
}

// ApplyCheckpointResult carries what applyCheckpoint produced, including
// the scan evidence attached to the audit trail.
type ApplyCheckpointResult struct {
	FileContents map[string]string
	ScanResults  map[string]model.ScanResult
	DTEResult    model.DTEResult
}

// ApplyCheckpoint runs the full pipeline: scan every input file, abort on
// any critical finding, snapshot inputs, dispatch to the Transform
// Engine, and roll back on failure. On success the checkpoint's exec
// state becomes applied; on failure it becomes failed and writeFile is
// used to restore every input file to its pre-image snapshot content, the
// same restore path RollbackBatch uses.
func (c *Coordinator) ApplyCheckpoint(ctx context.Context, missionID string, name model.CheckpointName, spec model.ChangeSpec, workdir string, fileContents map[string]string, writeFile func(path, content string) error) (ApplyCheckpointResult, error) {
	c.mu.Lock()
	m, ok := c.missions[missionID]
	if !ok {
		c.mu.Unlock()
		return ApplyCheckpointResult{}, model.ErrMissionNotFound
	}
	cp := m.Checkpoint(name)
	if cp == nil {
		c.mu.Unlock()
		return ApplyCheckpointResult{}, model.ErrCheckpointNotFound
	}
	c.mu.Unlock()

	// ScanMultiple's returned error reflects block-action policy violations,
	// which are a separate concern from the critical-severity abort below.
	scanResults, _ := c.redactor.ScanMultiple(fileContents)
	for path, sr := range scanResults {
		for _, f := range sr.Findings {
			if f.Severity == model.SeverityCritical {
				c.markExecState(missionID, name, model.ExecFailed)
				return ApplyCheckpointResult{ScanResults: scanResults}, fmt.Errorf("%w: critical finding in %s: %s", model.ErrSecurityBlock, path, f.Message)
			}
		}
	}

	snapshot := model.Snapshot{
		ID:                  uuid.NewString(),
		CheckpointOrBatchID: string(name),
		Files:               copyFiles(fileContents),
		Timestamp:           c.now(),
	}
	c.mu.Lock()
	c.snapshots[snapshot.ID] = snapshot
	c.mu.Unlock()

	c.markExecState(missionID, name, model.ExecApplied)

	dteResult := c.transform.Apply(spec, workdir)
	if !dteResult.Success {
		if err := c.restoreSnapshot(snapshot, writeFile); err != nil {
			return ApplyCheckpointResult{ScanResults: scanResults, DTEResult: dteResult}, err
		}
		c.markExecState(missionID, name, model.ExecFailed)
		return ApplyCheckpointResult{ScanResults: scanResults, DTEResult: dteResult}, nil
	}

	verifyResult := c.transform.Verify(ctx, spec, workdir)
	if !verifyResult.Success {
		if err := c.restoreSnapshot(snapshot, writeFile); err != nil {
			return ApplyCheckpointResult{ScanResults: scanResults, DTEResult: verifyResult}, err
		}
		c.markExecState(missionID, name, model.ExecFailed)
		return ApplyCheckpointResult{ScanResults: scanResults, DTEResult: verifyResult}, nil
	}

	c.markExecState(missionID, name, model.ExecVerified)

	return ApplyCheckpointResult{FileContents: fileContents, ScanResults: scanResults, DTEResult: dteResult}, nil
}

// restoreSnapshot writes every file in snapshot back through writeFile,
// the same restore path RollbackBatch uses for a batch's pre-image.
func (c *Coordinator) restoreSnapshot(snapshot model.Snapshot, writeFile func(path, content string) error) error {
	for path, content := range snapshot.Files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("%w: restoring %s: %v", model.ErrIOError, path, err)
		}
	}
	return nil
}

func (c *Coordinator) markExecState(missionID string, name model.CheckpointName, state model.CheckpointExecState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.missions[missionID]
	if !ok {
		return
	}
	cp := m.Checkpoint(name)
	if cp == nil {
		return
	}
	cp.ExecState = state
	m.UpdatedAt = c.now()
}

func copyFiles(files map[string]string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}
