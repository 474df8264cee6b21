package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// NotificationService persists workflow notifications and serves the inbox
// endpoints. Every Notify* method is best-effort from the caller's point of
// view: callers log failures and move on.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	log      *zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		log:      logger.GetLogger(),
	}
}

// NotifyRevisionCreated fans out to every reviewer when a draft is created.
func (s *NotificationService) NotifyRevisionCreated(revision *domain.Revision) error {
	return s.fanOutToReviewers(revision, domain.NotifyRevisionCreated,
		"新しい修正案が作成されました",
		fmt.Sprintf("記事 %s の修正案が作成されました", revision.TargetArticleID))
}

// NotifyRevisionSubmitted fans out to every reviewer on submission.
func (s *NotificationService) NotifyRevisionSubmitted(revision *domain.Revision) error {
	return s.fanOutToReviewers(revision, domain.NotifyRevisionSubmitted,
		"修正案が提出されました",
		fmt.Sprintf("記事 %s の修正案がレビュー待ちです", revision.TargetArticleID))
}

// NotifyRevisionApproved notifies the proposer of an approval.
func (s *NotificationService) NotifyRevisionApproved(revision *domain.Revision, approverID, recipientID uuid.UUID) error {
	return s.repo.Create(&domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotifyRevisionApproved,
		Title:       "修正案が承認されました",
		Content:     fmt.Sprintf("記事 %s の修正案が承認されました", revision.TargetArticleID),
		RevisionID:  &revision.ID,
		SenderID:    &approverID,
	})
}

// NotifyRevisionRejected notifies the proposer of a rejection with the reason.
func (s *NotificationService) NotifyRevisionRejected(revision *domain.Revision, rejectorID, recipientID uuid.UUID, reason string) error {
	return s.repo.Create(&domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotifyRevisionRejected,
		Title:       "修正案が却下されました",
		Content:     fmt.Sprintf("記事 %s の修正案が却下されました: %s", revision.TargetArticleID, reason),
		RevisionID:  &revision.ID,
		SenderID:    &rejectorID,
	})
}

// NotifyModificationRequested notifies the proposer of a modification request.
func (s *NotificationService) NotifyModificationRequested(revision *domain.Revision, requesterID, recipientID uuid.UUID, instructionText string) error {
	return s.repo.Create(&domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotifyRevisionRequest,
		Title:       "修正依頼があります",
		Content:     fmt.Sprintf("記事 %s の修正案に修正依頼: %s", revision.TargetArticleID, instructionText),
		RevisionID:  &revision.ID,
		SenderID:    &requesterID,
	})
}

// NotifyCommentAdded notifies a recipient that a comment was added.
func (s *NotificationService) NotifyCommentAdded(revision *domain.Revision, senderID, recipientID uuid.UUID, comment string) error {
	return s.repo.Create(&domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotifyCommentAdded,
		Title:       "コメントが追加されました",
		Content:     comment,
		RevisionID:  &revision.ID,
		SenderID:    &senderID,
	})
}

func (s *NotificationService) fanOutToReviewers(revision *domain.Revision, notifType, title, content string) error {
	reviewers, err := s.userRepo.FindReviewers()
	if err != nil {
		return err
	}

	notifications := make([]*domain.Notification, 0, len(reviewers))
	for _, reviewer := range reviewers {
		if reviewer.ID == revision.ProposerID {
			continue
		}
		notifications = append(notifications, &domain.Notification{
			RecipientID: reviewer.ID,
			Type:        notifType,
			Title:       title,
			Content:     content,
			RevisionID:  &revision.ID,
			SenderID:    &revision.ProposerID,
		})
	}
	return s.repo.CreateBatch(notifications)
}

// GetUnreadCount returns the unread notification count for a user
func (s *NotificationService) GetUnreadCount(userID uuid.UUID) (*domain.NotificationSummaryResponse, error) {
	count, err := s.repo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummaryResponse{TotalUnread: int(count)}, nil
}

// GetList returns paginated notifications for a user
func (s *NotificationService) GetList(userID uuid.UUID, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.FindByRecipient(userID, offset, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.UnreadCount(userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = domain.NotificationItem{
			ID:         n.ID,
			Type:       n.Type,
			Title:      n.Title,
			Content:    n.Content,
			RevisionID: n.RevisionID,
			SenderID:   n.SenderID,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		}
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &domain.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unreadCount,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
	}, nil
}

// MarkAsRead marks a notification as read after ownership check
func (s *NotificationService) MarkAsRead(userID uuid.UUID, notificationID uint64) error {
	n, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotFound
	}
	if n.RecipientID != userID {
		return common.ErrForbidden
	}
	return s.repo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *NotificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(userID)
}
