package model

// CheckpointName identifies one of the four ordered mission stages.
type CheckpointName string

const (
	CheckpointPlan     CheckpointName = "plan"
	CheckpointExecute  CheckpointName = "execute"
	CheckpointVerify   CheckpointName = "verify"
	CheckpointFinalize CheckpointName = "finalize"
)

// CheckpointOrder is the canonical, ordered checkpoint sequence.
var CheckpointOrder = []CheckpointName{
	CheckpointPlan, CheckpointExecute, CheckpointVerify, CheckpointFinalize,
}

// CheckpointStatus is the mission-workflow status of a checkpoint gate.
type CheckpointStatus string

const (
	CheckpointPending   CheckpointStatus = "pending"
	CheckpointApproved  CheckpointStatus = "approved"
	CheckpointRejected  CheckpointStatus = "rejected"
	CheckpointCompleted CheckpointStatus = "completed"
)

// Actor is who is expected to act on (or acted on) a checkpoint.
type Actor string

const (
	ActorHuman Actor = "human"
	ActorAgent Actor = "agent"
	ActorBoth  Actor = "both"
)

// CheckpointExecState is the internal lifecycle of a single apply, tracked
// orthogonally to the four-checkpoint mission workflow.
type CheckpointExecState string

const (
	ExecPending     CheckpointExecState = "pending"
	ExecApplied     CheckpointExecState = "applied"
	ExecVerified    CheckpointExecState = "verified"
	ExecFailed      CheckpointExecState = "failed"
	ExecRolledBack  CheckpointExecState = "rolled_back"
)

// Checkpoint is one gate in the mission lifecycle.
type Checkpoint struct {
	Name      CheckpointName      `json:"name"`
	Status    CheckpointStatus    `json:"status"`
	Actor     Actor               `json:"actor"`
	ExecState CheckpointExecState `json:"execState"`

	// Name-specific slots.
	Artifacts []string `json:"artifacts,omitempty"` // plan
	Batches   []Batch  `json:"batches,omitempty"`   // execute
	Metrics   map[string]float64 `json:"metrics,omitempty"` // verify
	AuditPackRef string `json:"auditPackRef,omitempty"`      // finalize
}

// Mission is an end-to-end change workflow instance.
type Mission struct {
	MissionID   string       `json:"missionId"`
	Title       string       `json:"title"`
	Risk        RiskLevel    `json:"risk"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	CreatedAt   Timestamp    `json:"createdAt"`
	UpdatedAt   Timestamp    `json:"updatedAt"`
}

// Checkpoint returns a pointer to the named checkpoint, or nil.
func (m *Mission) Checkpoint(name CheckpointName) *Checkpoint {
	for i := range m.Checkpoints {
		if m.Checkpoints[i].Name == name {
			return &m.Checkpoints[i]
		}
	}
	return nil
}

// BatchStatus tracks a batch's reversibility lifecycle.
type BatchStatus string

const (
	BatchActive     BatchStatus = "active"
	BatchRolledBack BatchStatus = "rolled_back"
)

// Batch is a reversible unit of applied work within the execute checkpoint,
// backed by a pre-image snapshot of every file it touches.
type Batch struct {
	ID          string      `json:"id"`
	Reversible  bool        `json:"reversible"`
	PatchResults []DTEResult `json:"prs"`
	SnapshotRef string      `json:"snapshotRef"`
	Status      BatchStatus `json:"status"`
}

// Snapshot is the pre-image of every file a batch or checkpoint apply
// touches. Owned by the Mission Coordinator; its lifetime equals the
// lifetime of the owning batch and it is destroyed on rollback or on
// mission finalize+purge.
type Snapshot struct {
	ID                 string            `json:"id"`
	CheckpointOrBatchID string           `json:"checkpointOrBatchId"`
	Files              map[string]string `json:"files"` // path -> content
	Timestamp          Timestamp         `json:"timestamp"`
}
