package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalAction is the audited state-changing action taken on a revision.
type ApprovalAction string

const (
	ActionApproved          ApprovalAction = "approved"
	ActionRejected          ApprovalAction = "rejected"
	ActionRevisionRequested ApprovalAction = "revision_requested"
	ActionWithdrawn         ApprovalAction = "withdrawn"
)

// ApprovalHistory is an immutable audit log entry, one per state-changing
// action. Never updated after creation.
type ApprovalHistory struct {
	ID         uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	RevisionID uuid.UUID      `gorm:"column:revision_id;type:char(36);index" json:"revision_id"`
	ActorID    uuid.UUID      `gorm:"column:actor_id;type:char(36)" json:"actor_id"`
	Action     ApprovalAction `gorm:"column:action;type:varchar(20)" json:"action"`
	Comment    *string        `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (ApprovalHistory) TableName() string { return "approval_histories" }

// ApprovalHistoryItem is the response shape for one audit entry.
type ApprovalHistoryItem struct {
	ID         uuid.UUID      `json:"id"`
	RevisionID uuid.UUID      `json:"revision_id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActorName  string         `json:"actor_name,omitempty"`
	Action     ApprovalAction `json:"action"`
	Comment    *string        `json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RevisionStatusCounts is the reviewer dashboard summary.
type RevisionStatusCounts struct {
	UnderReview       int64 `json:"under_review"`
	RevisionRequested int64 `json:"revision_requested"`
	Approved          int64 `json:"approved"`
	Rejected          int64 `json:"rejected"`
}
