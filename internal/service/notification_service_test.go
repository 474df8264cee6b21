package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

func TestNotifyRevisionSubmitted(t *testing.T) {
	t.Run("fans out to reviewers but never to the proposer", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		userRepo := new(MockUserRepository)
		svc := NewNotificationService(repo, userRepo)

		proposerID := uuid.New()
		reviewerA := uuid.New()
		reviewerB := uuid.New()
		revision := newTestRevision(proposerID, domain.StatusUnderReview)

		userRepo.On("FindReviewers").Return([]*domain.User{
			{ID: reviewerA, Role: domain.RoleApprover},
			{ID: proposerID, Role: domain.RoleApprover},
			{ID: reviewerB, Role: domain.RoleSupervisor},
		}, nil)
		repo.On("CreateBatch", mock.MatchedBy(func(ns []*domain.Notification) bool {
			if len(ns) != 2 {
				return false
			}
			for _, n := range ns {
				if n.RecipientID == proposerID {
					return false
				}
				if n.Type != domain.NotifyRevisionSubmitted {
					return false
				}
			}
			return true
		})).Return(nil)

		assert.NoError(t, svc.NotifyRevisionSubmitted(revision))
		repo.AssertExpectations(t)
	})
}

func TestNotifyRevisionApproved(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(repo, new(MockUserRepository))

	proposerID := uuid.New()
	approverID := uuid.New()
	revision := newTestRevision(proposerID, domain.StatusApproved)

	repo.On("Create", mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientID == proposerID &&
			n.Type == domain.NotifyRevisionApproved &&
			*n.SenderID == approverID &&
			*n.RevisionID == revision.ID
	})).Return(nil)

	assert.NoError(t, svc.NotifyRevisionApproved(revision, approverID, proposerID))
	repo.AssertExpectations(t)
}

func TestNotificationInbox(t *testing.T) {
	userID := uuid.New()

	t.Run("list clamps pagination and computes total pages", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		svc := NewNotificationService(repo, new(MockUserRepository))

		repo.On("FindByRecipient", userID, 0, 20).Return([]*domain.Notification{
			{ID: 1, RecipientID: userID, Type: domain.NotifyRevisionApproved, Title: "修正案が承認されました"},
		}, int64(41), nil)
		repo.On("UnreadCount", userID).Return(int64(5), nil)

		list, err := svc.GetList(userID, 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, list.Page)
		assert.Equal(t, 20, list.Limit)
		assert.Equal(t, 3, list.TotalPages)
		assert.Equal(t, int64(5), list.UnreadCount)
		assert.Len(t, list.Items, 1)
	})

	t.Run("mark as read rejects another user's notification", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		svc := NewNotificationService(repo, new(MockUserRepository))

		repo.On("FindByID", uint64(7)).Return(&domain.Notification{
			ID: 7, RecipientID: uuid.New(),
		}, nil)

		err := svc.MarkAsRead(userID, 7)
		assert.ErrorIs(t, err, common.ErrForbidden)
		repo.AssertNotCalled(t, "MarkAsRead", mock.Anything)
	})

	t.Run("mark as read for the owner", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		svc := NewNotificationService(repo, new(MockUserRepository))

		repo.On("FindByID", uint64(8)).Return(&domain.Notification{ID: 8, RecipientID: userID}, nil)
		repo.On("MarkAsRead", uint64(8)).Return(nil)

		assert.NoError(t, svc.MarkAsRead(userID, 8))
		repo.AssertExpectations(t)
	})

	t.Run("unread summary", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		svc := NewNotificationService(repo, new(MockUserRepository))

		repo.On("UnreadCount", userID).Return(int64(3), nil)

		summary, err := svc.GetUnreadCount(userID)
		assert.NoError(t, err)
		assert.Equal(t, 3, summary.TotalUnread)
	})
}
