package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RevisionStatus is the lifecycle state of a proposed revision.
type RevisionStatus string

const (
	StatusDraft             RevisionStatus = "draft"
	StatusUnderReview       RevisionStatus = "under_review"
	StatusRevisionRequested RevisionStatus = "revision_requested"
	StatusApproved          RevisionStatus = "approved"
	StatusRejected          RevisionStatus = "rejected"
	StatusWithdrawn         RevisionStatus = "withdrawn"
)

// StatusTransitions is the single source of truth for structurally valid
// lifecycle moves. Terminal states have no outbound transitions.
var StatusTransitions = map[RevisionStatus][]RevisionStatus{
	StatusDraft:             {StatusUnderReview, StatusWithdrawn},
	StatusUnderReview:       {StatusApproved, StatusRejected, StatusRevisionRequested},
	StatusRevisionRequested: {StatusUnderReview},
	StatusApproved:          {},
	StatusRejected:          {},
	StatusWithdrawn:         {},
}

// CanTransition reports whether from -> to is in the transition table.
func (s RevisionStatus) CanTransition(to RevisionStatus) bool {
	for _, allowed := range StatusTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outbound transitions.
func (s RevisionStatus) IsTerminal() bool {
	return len(StatusTransitions[s]) == 0 && s.Valid()
}

// Valid reports whether s is a known status.
func (s RevisionStatus) Valid() bool {
	_, ok := StatusTransitions[s]
	return ok
}

// DisplayName returns the portal UI label for the status.
func (s RevisionStatus) DisplayName() string {
	switch s {
	case StatusDraft:
		return "下書き"
	case StatusUnderReview:
		return "レビュー中"
	case StatusRevisionRequested:
		return "修正依頼中"
	case StatusApproved:
		return "承認済み"
	case StatusRejected:
		return "却下"
	case StatusWithdrawn:
		return "取り下げ"
	}
	return string(s)
}

// Priority of a modification instruction.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// EditableFields is the fixed set of article attributes a revision may change,
// in the order diffs are reported.
var EditableFields = []string{
	"title", "info_category", "keywords", "importance", "target",
	"question", "answer", "additional_comment", "publish_start", "publish_end",
}

// Revision is a proposed change to exactly one article. The before_* columns
// snapshot the article at creation time; after_* hold the proposed values,
// nil meaning "no change to this field".
type Revision struct {
	ID              uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	TargetArticleID string         `gorm:"column:target_article_id;type:varchar(50);index" json:"target_article_id"`
	ProposerID      uuid.UUID      `gorm:"column:proposer_id;type:char(36);index" json:"proposer_id"`
	Status          RevisionStatus `gorm:"column:status;type:varchar(20);index;default:draft" json:"status"`
	Reason          string         `gorm:"column:reason;type:text" json:"reason"`

	BeforeTitle             *string    `gorm:"column:before_title;type:text" json:"before_title"`
	AfterTitle              *string    `gorm:"column:after_title;type:text" json:"after_title"`
	BeforeInfoCategory      *string    `gorm:"column:before_info_category;type:varchar(2)" json:"before_info_category"`
	AfterInfoCategory       *string    `gorm:"column:after_info_category;type:varchar(2)" json:"after_info_category"`
	BeforeKeywords          *string    `gorm:"column:before_keywords;type:text" json:"before_keywords"`
	AfterKeywords           *string    `gorm:"column:after_keywords;type:text" json:"after_keywords"`
	BeforeImportance        *bool      `gorm:"column:before_importance" json:"before_importance"`
	AfterImportance         *bool      `gorm:"column:after_importance" json:"after_importance"`
	BeforeTarget            *string    `gorm:"column:before_target;type:varchar(20)" json:"before_target"`
	AfterTarget             *string    `gorm:"column:after_target;type:varchar(20)" json:"after_target"`
	BeforeQuestion          *string    `gorm:"column:before_question;type:text" json:"before_question"`
	AfterQuestion           *string    `gorm:"column:after_question;type:text" json:"after_question"`
	BeforeAnswer            *string    `gorm:"column:before_answer;type:text" json:"before_answer"`
	AfterAnswer             *string    `gorm:"column:after_answer;type:text" json:"after_answer"`
	BeforeAdditionalComment *string    `gorm:"column:before_additional_comment;type:text" json:"before_additional_comment"`
	AfterAdditionalComment  *string    `gorm:"column:after_additional_comment;type:text" json:"after_additional_comment"`
	BeforePublishStart      *time.Time `gorm:"column:before_publish_start" json:"before_publish_start"`
	AfterPublishStart       *time.Time `gorm:"column:after_publish_start" json:"after_publish_start"`
	BeforePublishEnd        *time.Time `gorm:"column:before_publish_end" json:"before_publish_end"`
	AfterPublishEnd         *time.Time `gorm:"column:after_publish_end" json:"after_publish_end"`

	ApproverID      *uuid.UUID `gorm:"column:approver_id;type:char(36)" json:"approver_id"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at"`
	ApprovalComment *string    `gorm:"column:approval_comment;type:text" json:"approval_comment"`

	// Optimistic-concurrency marker, incremented on every content edit
	Version int `gorm:"column:version;default:1" json:"version"`

	ReviewStartDate    *time.Time `gorm:"column:review_start_date" json:"review_start_date"`
	ReviewDeadlineDate *time.Time `gorm:"column:review_deadline_date" json:"review_deadline_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Revision) TableName() string { return "revisions" }

// BeforeValue returns the snapshot value of an editable field.
func (r *Revision) BeforeValue(field string) interface{} {
	switch field {
	case "title":
		return deref(r.BeforeTitle)
	case "info_category":
		return deref(r.BeforeInfoCategory)
	case "keywords":
		return deref(r.BeforeKeywords)
	case "importance":
		return derefBool(r.BeforeImportance)
	case "target":
		return deref(r.BeforeTarget)
	case "question":
		return deref(r.BeforeQuestion)
	case "answer":
		return deref(r.BeforeAnswer)
	case "additional_comment":
		return deref(r.BeforeAdditionalComment)
	case "publish_start":
		return derefTime(r.BeforePublishStart)
	case "publish_end":
		return derefTime(r.BeforePublishEnd)
	}
	return nil
}

// AfterValue returns the proposed value of an editable field, nil when the
// field is not part of the proposal.
func (r *Revision) AfterValue(field string) interface{} {
	switch field {
	case "title":
		return deref(r.AfterTitle)
	case "info_category":
		return deref(r.AfterInfoCategory)
	case "keywords":
		return deref(r.AfterKeywords)
	case "importance":
		return derefBool(r.AfterImportance)
	case "target":
		return deref(r.AfterTarget)
	case "question":
		return deref(r.AfterQuestion)
	case "answer":
		return deref(r.AfterAnswer)
	case "additional_comment":
		return deref(r.AfterAdditionalComment)
	case "publish_start":
		return derefTime(r.AfterPublishStart)
	case "publish_end":
		return derefTime(r.AfterPublishEnd)
	}
	return nil
}

// ModifiedFields lists the editable fields with an effective proposed change.
func (r *Revision) ModifiedFields() []string {
	var modified []string
	for _, field := range EditableFields {
		after := r.AfterValue(field)
		if after != nil && after != r.BeforeValue(field) {
			modified = append(modified, field)
		}
	}
	return modified
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func derefTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// FieldChange is one before/after pair inside an edit-history record.
type FieldChange struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// ChangeSet maps field name to its change, stored as a JSON column.
type ChangeSet map[string]FieldChange

// Value implements driver.Valuer
func (c ChangeSet) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (c *ChangeSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = ChangeSet{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("unsupported changeset column type %T", value)
}

// StringList is a JSON-encoded list column.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported list column type %T", value)
}

// RevisionEditHistory is one append-only record per content edit.
type RevisionEditHistory struct {
	ID            uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	RevisionID    uuid.UUID `gorm:"column:revision_id;type:char(36);index" json:"revision_id"`
	EditorID      uuid.UUID `gorm:"column:editor_id;type:char(36)" json:"editor_id"`
	EditorRole    Role      `gorm:"column:editor_role;type:varchar(20)" json:"editor_role"`
	Changes       ChangeSet `gorm:"column:changes;type:json" json:"changes"`
	Comment       *string   `gorm:"column:comment;type:text" json:"comment"`
	VersionBefore int       `gorm:"column:version_before" json:"version_before"`
	VersionAfter  int       `gorm:"column:version_after" json:"version_after"`
	EditedAt      time.Time `gorm:"column:edited_at;autoCreateTime" json:"edited_at"`
}

// TableName returns the table name
func (RevisionEditHistory) TableName() string { return "revision_edit_histories" }

// RevisionInstruction is a modification request attached to a revision while
// it sits in revision_requested. Resolution is independent of the revision's
// own status transitions.
type RevisionInstruction struct {
	ID                uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	RevisionID        uuid.UUID  `gorm:"column:revision_id;type:char(36);index" json:"revision_id"`
	InstructorID      uuid.UUID  `gorm:"column:instructor_id;type:char(36)" json:"instructor_id"`
	InstructionText   string     `gorm:"column:instruction_text;type:text" json:"instruction_text"`
	RequiredFields    StringList `gorm:"column:required_fields;type:json" json:"required_fields"`
	Priority          Priority   `gorm:"column:priority;type:varchar(10);default:normal" json:"priority"`
	DueDate           *time.Time `gorm:"column:due_date" json:"due_date"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at" json:"resolved_at"`
	ResolutionComment *string    `gorm:"column:resolution_comment;type:text" json:"resolution_comment"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (RevisionInstruction) TableName() string { return "revision_instructions" }
