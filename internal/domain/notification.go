package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the revision workflow
const (
	NotifyRevisionCreated   = "revision_created"
	NotifyRevisionSubmitted = "revision_submitted"
	NotifyRevisionEdited    = "revision_edited"
	NotifyRevisionApproved  = "revision_approved"
	NotifyRevisionRejected  = "revision_rejected"
	NotifyRevisionRequest   = "revision_request"
	NotifyCommentAdded      = "comment_added"
)

// Notification is an out-of-band message to a user triggered by workflow
// events. Delivery is best-effort and never blocks the triggering transition.
type Notification struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:char(36);index" json:"recipient_id"`
	Type        string     `gorm:"column:type;type:varchar(30)" json:"type"`
	Title       string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Content     string     `gorm:"column:content;type:text" json:"content"`
	RevisionID  *uuid.UUID `gorm:"column:revision_id;type:char(36);index" json:"revision_id,omitempty"`
	SenderID    *uuid.UUID `gorm:"column:sender_id;type:char(36)" json:"sender_id,omitempty"`
	IsRead      bool       `gorm:"column:is_read" json:"is_read"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (Notification) TableName() string { return "notifications" }

// NotificationSummaryResponse represents unread count response
type NotificationSummaryResponse struct {
	TotalUnread int `json:"total_unread"`
}

// NotificationItem represents a single notification in list
type NotificationItem struct {
	ID         uint64     `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	RevisionID *uuid.UUID `json:"revision_id,omitempty"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  string     `json:"created_at"`
}

// NotificationListResponse represents notification list response
type NotificationListResponse struct {
	Items       []NotificationItem `json:"items"`
	Total       int64              `json:"total"`
	UnreadCount int64              `json:"unread_count"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
	TotalPages  int                `json:"total_pages"`
}
