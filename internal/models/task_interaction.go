package models

import "time"

// ActionKind labels a ledger entry for display. It is an open set.
type ActionKind string

const (
	ActionCommentAndEvidence ActionKind = "comment_and_evidence"
	ActionProgressUpdate     ActionKind = "progress_update"
	ActionStatusChange       ActionKind = "status_change"
	ActionStatusChangeToDone ActionKind = "status_change_to_done"
)

// TaskInteraction is an append-only ledger entry.
type TaskInteraction struct {
	ID                  uint64     `gorm:"primarykey;index:idx_task_interactions_ledger,priority:3" json:"id"`
	TaskID              uint64     `gorm:"not null;index:idx_task_interactions_ledger,priority:1" json:"task_id"`
	Username            string     `gorm:"type:varchar(100);not null;index" json:"username"`
	ActionKind          ActionKind `gorm:"type:varchar(50);not null" json:"action_kind"`
	Timestamp           time.Time  `gorm:"not null;index:idx_task_interactions_ledger,priority:2" json:"timestamp"`
	Comment             *string    `gorm:"type:text" json:"comment"`
	Evidence            []byte     `json:"evidence_base64,omitempty"`
	EvidenceContentType *string    `gorm:"type:varchar(50)" json:"evidence_content_type,omitempty"`
	ResultingStage      *Stage     `gorm:"type:varchar(20)" json:"resulting_stage"`
	ResultingProgress   *int       `json:"resulting_progress"`
}
