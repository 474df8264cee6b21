package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArticleModifications carries the proposed after_* values. A nil pointer (or
// nil keywords slice) means the field is left untouched.
type ArticleModifications struct {
	Title             *string    `json:"title"`
	InfoCategory      *string    `json:"info_category"`
	Keywords          []string   `json:"keywords"`
	Importance        *bool      `json:"importance"`
	Target            *string    `json:"target"`
	Question          *string    `json:"question"`
	Answer            *string    `json:"answer"`
	AdditionalComment *string    `json:"additional_comment"`
	PublishStart      *time.Time `json:"publish_start"`
	PublishEnd        *time.Time `json:"publish_end"`
}

// RevisionCreateRequest is the payload for proposing a new revision.
type RevisionCreateRequest struct {
	TargetArticleID string               `json:"target_article_id" binding:"required"`
	Reason          string               `json:"reason" binding:"required"`
	Modifications   ArticleModifications `json:"modifications"`
}

// RevisionUpdateRequest is the payload for a content edit. Version must match
// the version the client loaded; stale versions are rejected.
type RevisionUpdateRequest struct {
	Version       int                   `json:"version" binding:"required"`
	Reason        *string               `json:"reason"`
	Modifications *ArticleModifications `json:"modifications"`
	Comment       *string               `json:"comment"`
}

// RevisionFilter narrows List results.
type RevisionFilter struct {
	Status          *RevisionStatus
	ProposerID      *uuid.UUID
	TargetArticleID *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

// RevisionResponse is the explicit entity-to-response mapping for a revision.
// Every exposed field is enumerated by name; nothing is struct-dumped.
type RevisionResponse struct {
	ID              uuid.UUID      `json:"id"`
	TargetArticleID string         `json:"target_article_id"`
	ArticleTitle    string         `json:"article_title,omitempty"`
	ProposerID      uuid.UUID      `json:"proposer_id"`
	ProposerName    string         `json:"proposer_name,omitempty"`
	Status          RevisionStatus `json:"status"`
	StatusDisplay   string         `json:"status_display"`
	Reason          string         `json:"reason"`
	Version         int            `json:"version"`

	BeforeTitle             *string    `json:"before_title"`
	AfterTitle              *string    `json:"after_title"`
	BeforeInfoCategory      *string    `json:"before_info_category"`
	AfterInfoCategory       *string    `json:"after_info_category"`
	BeforeKeywords          []string   `json:"before_keywords"`
	AfterKeywords           []string   `json:"after_keywords"`
	BeforeImportance        *bool      `json:"before_importance"`
	AfterImportance         *bool      `json:"after_importance"`
	BeforeTarget            *string    `json:"before_target"`
	AfterTarget             *string    `json:"after_target"`
	BeforeQuestion          *string    `json:"before_question"`
	AfterQuestion           *string    `json:"after_question"`
	BeforeAnswer            *string    `json:"before_answer"`
	AfterAnswer             *string    `json:"after_answer"`
	BeforeAdditionalComment *string    `json:"before_additional_comment"`
	AfterAdditionalComment  *string    `json:"after_additional_comment"`
	BeforePublishStart      *time.Time `json:"before_publish_start"`
	AfterPublishStart       *time.Time `json:"after_publish_start"`
	BeforePublishEnd        *time.Time `json:"before_publish_end"`
	AfterPublishEnd         *time.Time `json:"after_publish_end"`

	ModifiedFields []string `json:"modified_fields"`

	ApproverID      *uuid.UUID `json:"approver_id"`
	ApproverName    string     `json:"approver_name,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovalComment *string    `json:"approval_comment"`

	ReviewStartDate    *time.Time `json:"review_start_date"`
	ReviewDeadlineDate *time.Time `json:"review_deadline_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRevisionResponse maps a revision entity to its response shape.
func NewRevisionResponse(r *Revision, proposerName, approverName, articleTitle string) *RevisionResponse {
	return &RevisionResponse{
		ID:              r.ID,
		TargetArticleID: r.TargetArticleID,
		ArticleTitle:    articleTitle,
		ProposerID:      r.ProposerID,
		ProposerName:    proposerName,
		Status:          r.Status,
		StatusDisplay:   r.Status.DisplayName(),
		Reason:          r.Reason,
		Version:         r.Version,

		BeforeTitle:             r.BeforeTitle,
		AfterTitle:              r.AfterTitle,
		BeforeInfoCategory:      r.BeforeInfoCategory,
		AfterInfoCategory:       r.AfterInfoCategory,
		BeforeKeywords:          SplitKeywords(r.BeforeKeywords),
		AfterKeywords:           SplitKeywords(r.AfterKeywords),
		BeforeImportance:        r.BeforeImportance,
		AfterImportance:         r.AfterImportance,
		BeforeTarget:            r.BeforeTarget,
		AfterTarget:             r.AfterTarget,
		BeforeQuestion:          r.BeforeQuestion,
		AfterQuestion:           r.AfterQuestion,
		BeforeAnswer:            r.BeforeAnswer,
		AfterAnswer:             r.AfterAnswer,
		BeforeAdditionalComment: r.BeforeAdditionalComment,
		AfterAdditionalComment:  r.AfterAdditionalComment,
		BeforePublishStart:      r.BeforePublishStart,
		AfterPublishStart:       r.AfterPublishStart,
		BeforePublishEnd:        r.BeforePublishEnd,
		AfterPublishEnd:         r.AfterPublishEnd,

		ModifiedFields: r.ModifiedFields(),

		ApproverID:      r.ApproverID,
		ApproverName:    approverName,
		ApprovedAt:      r.ApprovedAt,
		ApprovalComment: r.ApprovalComment,

		ReviewStartDate:    r.ReviewStartDate,
		ReviewDeadlineDate: r.ReviewDeadlineDate,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RevisionDiff is one field-level diff row. When the field carries no
// proposal, After echoes Before and IsModified is false.
type RevisionDiff struct {
	Field      string      `json:"field"`
	Before     interface{} `json:"before"`
	After      interface{} `json:"after"`
	IsModified bool        `json:"is_modified"`
}

// RevisionDetailDiff is the full diff view of a revision.
type RevisionDetailDiff struct {
	RevisionID     uuid.UUID      `json:"revision_id"`
	ModifiedFields []string       `json:"modified_fields"`
	Diffs          []RevisionDiff `json:"diffs"`
}

// EditHistoryItem is the response shape for one edit-history record.
type EditHistoryItem struct {
	ID            uuid.UUID `json:"id"`
	RevisionID    uuid.UUID `json:"revision_id"`
	EditorID      uuid.UUID `json:"editor_id"`
	EditorName    string    `json:"editor_name,omitempty"`
	EditorRole    Role      `json:"editor_role"`
	EditedAt      time.Time `json:"edited_at"`
	Changes       ChangeSet `json:"changes"`
	Comment       *string   `json:"comment"`
	VersionBefore int       `json:"version_before"`
	VersionAfter  int       `json:"version_after"`
}

// VersionChange is one step in a field's change history between versions.
type VersionChange struct {
	Version   int         `json:"version"`
	EditorID  string      `json:"editor_id"`
	ChangedAt *time.Time  `json:"changed_at"`
	From      interface{} `json:"from"`
	To        interface{} `json:"to"`
}

// FieldVersionDiff consolidates every change to one field between versions.
type FieldVersionDiff struct {
	InitialValue  interface{}     `json:"initial_value"`
	FinalValue    interface{}     `json:"final_value"`
	ChangeHistory []VersionChange `json:"change_history"`
}

// VersionDiff aggregates edit history between two versions of a revision.
type VersionDiff struct {
	RevisionID  uuid.UUID                   `json:"revision_id"`
	FromVersion int                         `json:"from_version"`
	ToVersion   int                         `json:"to_version"`
	Changes     map[string]FieldVersionDiff `json:"changes"`
	TotalEdits  int                         `json:"total_edits"`
}

// InstructionCreateRequest is the payload attached to request-modification.
type InstructionCreateRequest struct {
	InstructionText string     `json:"instruction_text" binding:"required"`
	RequiredFields  []string   `json:"required_fields"`
	Priority        Priority   `json:"priority"`
	DueDate         *time.Time `json:"due_date"`
}

// InstructionResponse is the response shape for a modification instruction.
type InstructionResponse struct {
	ID                uuid.UUID  `json:"id"`
	RevisionID        uuid.UUID  `json:"revision_id"`
	InstructorID      uuid.UUID  `json:"instructor_id"`
	InstructorName    string     `json:"instructor_name,omitempty"`
	InstructionText   string     `json:"instruction_text"`
	RequiredFields    []string   `json:"required_fields"`
	Priority          Priority   `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	ResolvedAt        *time.Time `json:"resolved_at"`
	ResolutionComment *string    `json:"resolution_comment"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewInstructionResponse maps an instruction entity to its response shape.
func NewInstructionResponse(in *RevisionInstruction, instructorName string) *InstructionResponse {
	return &InstructionResponse{
		ID:                in.ID,
		RevisionID:        in.RevisionID,
		InstructorID:      in.InstructorID,
		InstructorName:    instructorName,
		InstructionText:   in.InstructionText,
		RequiredFields:    in.RequiredFields,
		Priority:          in.Priority,
		DueDate:           in.DueDate,
		ResolvedAt:        in.ResolvedAt,
		ResolutionComment: in.ResolutionComment,
		CreatedAt:         in.CreatedAt,
	}
}
