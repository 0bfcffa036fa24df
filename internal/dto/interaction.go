package dto

import (
	"time"

	"github.com/yukikurage/kanban-board-api/internal/models"
)

// InteractionDTO represents a ledger entry. Evidence is base64 encoded by
// encoding/json.
type InteractionDTO struct {
	ID                  uint64            `json:"id"`
	TaskID              uint64            `json:"task_id"`
	Username            string            `json:"username"`
	ActionKind          models.ActionKind `json:"action_kind"`
	Timestamp           time.Time         `json:"timestamp"`
	Comment             *string           `json:"comment"`
	EvidenceBase64      []byte            `json:"evidence_base64,omitempty"`
	EvidenceContentType *string           `json:"evidence_content_type,omitempty"`
	ResultingStage      *models.Stage     `json:"resulting_stage"`
	ResultingProgress   *int              `json:"resulting_progress"`
}

type InteractionListResponse struct {
	Interactions []InteractionDTO `json:"interactions"`
}

func ToInteractionDTO(entry models.TaskInteraction) InteractionDTO {
	return InteractionDTO{
		ID:                  entry.ID,
		TaskID:              entry.TaskID,
		Username:            entry.Username,
		ActionKind:          entry.ActionKind,
		Timestamp:           entry.Timestamp.UTC(),
		Comment:             entry.Comment,
		EvidenceBase64:      entry.Evidence,
		EvidenceContentType: entry.EvidenceContentType,
		ResultingStage:      entry.ResultingStage,
		ResultingProgress:   entry.ResultingProgress,
	}
}

func ToInteractionListResponse(entries []models.TaskInteraction) InteractionListResponse {
	items := make([]InteractionDTO, len(entries))
	for i, e := range entries {
		items[i] = ToInteractionDTO(e)
	}
	return InteractionListResponse{Interactions: items}
}
