package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

func timeRef() *time.Time {
	t := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	return &t
}

func TestValidateTransition(t *testing.T) {
	svc := NewWorkflowService(nil)

	allStatuses := []domain.RevisionStatus{
		domain.StatusDraft, domain.StatusUnderReview, domain.StatusApproved,
		domain.StatusRejected, domain.StatusRevisionRequested, domain.StatusWithdrawn,
	}
	valid := map[domain.RevisionStatus][]domain.RevisionStatus{
		domain.StatusDraft:             {domain.StatusUnderReview, domain.StatusWithdrawn},
		domain.StatusUnderReview:       {domain.StatusApproved, domain.StatusRejected, domain.StatusRevisionRequested},
		domain.StatusRevisionRequested: {domain.StatusUnderReview},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			expected := false
			for _, v := range valid[from] {
				if v == to {
					expected = true
				}
			}
			assert.Equal(t, expected, svc.ValidateTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	svc := NewWorkflowService(nil)

	assert.ElementsMatch(t,
		[]domain.RevisionStatus{domain.StatusUnderReview, domain.StatusWithdrawn},
		svc.AllowedTransitions(domain.StatusDraft))
	assert.ElementsMatch(t,
		[]domain.RevisionStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusRevisionRequested},
		svc.AllowedTransitions(domain.StatusUnderReview))
	assert.Empty(t, svc.AllowedTransitions(domain.StatusApproved))
	assert.Empty(t, svc.AllowedTransitions(domain.StatusRejected))
	assert.Empty(t, svc.AllowedTransitions(domain.StatusWithdrawn))
}

func TestCanTransition(t *testing.T) {
	svc := NewWorkflowService(nil)
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}
	admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("proposer submits own draft", func(t *testing.T) {
		ok, _ := svc.CanTransition(newTestRevision(proposerID, domain.StatusDraft), domain.StatusUnderReview, proposer)
		assert.True(t, ok)
	})

	t.Run("approver cannot submit another user's draft", func(t *testing.T) {
		ok, reason := svc.CanTransition(newTestRevision(proposerID, domain.StatusDraft), domain.StatusUnderReview, approver)
		assert.False(t, ok)
		assert.Equal(t, "only the proposer may submit a revision", reason)
	})

	t.Run("approver decides a revision under review, proposer cannot", func(t *testing.T) {
		revision := newTestRevision(proposerID, domain.StatusUnderReview)
		for _, to := range []domain.RevisionStatus{
			domain.StatusApproved, domain.StatusRejected, domain.StatusRevisionRequested,
		} {
			ok, _ := svc.CanTransition(revision, to, approver)
			assert.True(t, ok, "approver %s", to)
			ok, _ = svc.CanTransition(revision, to, proposer)
			assert.False(t, ok, "proposer %s", to)
		}
	})

	t.Run("proposer resubmits after modification request", func(t *testing.T) {
		revision := newTestRevision(proposerID, domain.StatusRevisionRequested)
		ok, _ := svc.CanTransition(revision, domain.StatusUnderReview, proposer)
		assert.True(t, ok)
		ok, _ = svc.CanTransition(revision, domain.StatusUnderReview, approver)
		assert.False(t, ok)
	})

	t.Run("admin cannot bypass the transition table", func(t *testing.T) {
		ok, reason := svc.CanTransition(newTestRevision(proposerID, domain.StatusApproved), domain.StatusDraft, admin)
		assert.False(t, ok)
		assert.Contains(t, reason, "invalid")
	})

	t.Run("admin passes every structurally valid transition", func(t *testing.T) {
		for from, targets := range domain.StatusTransitions {
			for _, to := range targets {
				ok, _ := svc.CanTransition(newTestRevision(proposerID, from), to, admin)
				assert.True(t, ok, "admin %s -> %s", from, to)
			}
		}
	})
}

func TestTransitionStatus(t *testing.T) {
	proposerID := uuid.New()
	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}

	t.Run("submit opens the review period", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		revision := newTestRevision(proposerID, domain.StatusDraft)
		repo.On("FindByID", revision.ID).Return(revision, nil)
		repo.On("Save", mock.AnythingOfType("*domain.Revision")).Return(nil)

		updated, err := svc.TransitionStatus(revision.ID, domain.StatusUnderReview, proposer, nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusUnderReview, updated.Status)
		assert.NotNil(t, updated.ReviewStartDate)
		repo.AssertExpectations(t)
	})

	t.Run("approval stamps the approver fields", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		revision := newTestRevision(proposerID, domain.StatusUnderReview)
		repo.On("FindByID", revision.ID).Return(revision, nil)
		repo.On("Save", mock.AnythingOfType("*domain.Revision")).Return(nil)

		comment := "内容を確認しました"
		updated, err := svc.TransitionStatus(revision.ID, domain.StatusApproved, approver, &comment)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, updated.Status)
		assert.Equal(t, approver.ID, *updated.ApproverID)
		assert.NotNil(t, updated.ApprovedAt)
		assert.Equal(t, comment, *updated.ApprovalComment)
	})

	t.Run("invalid transition is rejected before any write", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		revision := newTestRevision(proposerID, domain.StatusApproved)
		repo.On("FindByID", revision.ID).Return(revision, nil)

		_, err := svc.TransitionStatus(revision.ID, domain.StatusUnderReview, approver, nil)
		assert.ErrorIs(t, err, common.ErrInvalidState)
		repo.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("permission denial leaves the revision untouched", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		revision := newTestRevision(proposerID, domain.StatusUnderReview)
		repo.On("FindByID", revision.ID).Return(revision, nil)

		_, err := svc.TransitionStatus(revision.ID, domain.StatusApproved, proposer, nil)
		assert.ErrorIs(t, err, common.ErrForbidden)
		assert.Equal(t, domain.StatusUnderReview, revision.Status)
		repo.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("unknown revision", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		id := uuid.New()
		repo.On("FindByID", id).Return(nil, nil)

		_, err := svc.TransitionStatus(id, domain.StatusUnderReview, proposer, nil)
		assert.ErrorIs(t, err, common.ErrRevisionNotFound)
	})

	t.Run("resubmission keeps the original review start date", func(t *testing.T) {
		repo := new(MockRevisionRepository)
		svc := NewWorkflowService(repo)

		started := timeRef()
		revision := newTestRevision(proposerID, domain.StatusRevisionRequested)
		revision.ReviewStartDate = started
		repo.On("FindByID", revision.ID).Return(revision, nil)
		repo.On("Save", mock.AnythingOfType("*domain.Revision")).Return(nil)

		updated, err := svc.TransitionStatus(revision.ID, domain.StatusUnderReview, proposer, nil)
		assert.NoError(t, err)
		assert.Equal(t, started, updated.ReviewStartDate)
	})
}
