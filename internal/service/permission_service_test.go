package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

func newTestRevision(proposerID uuid.UUID, status domain.RevisionStatus) *domain.Revision {
	return &domain.Revision{
		ID:              uuid.New(),
		TargetArticleID: "KB-0001",
		ProposerID:      proposerID,
		Status:          status,
		Reason:          "誤字の修正と回答内容の更新のため",
		Version:         1,
	}
}

func TestCanView(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	stranger := domain.Principal{ID: uuid.New(), Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}
	svUser := domain.Principal{ID: uuid.New(), Role: domain.RoleGeneral, IsSV: true}
	admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("proposer sees own draft", func(t *testing.T) {
		ok, _ := svc.CanView(proposer, newTestRevision(proposerID, domain.StatusDraft))
		assert.True(t, ok)
	})

	t.Run("stranger cannot see another user's draft", func(t *testing.T) {
		ok, reason := svc.CanView(stranger, newTestRevision(proposerID, domain.StatusDraft))
		assert.False(t, ok)
		assert.NotEmpty(t, reason)
	})

	t.Run("approver cannot see another user's draft", func(t *testing.T) {
		ok, _ := svc.CanView(approver, newTestRevision(proposerID, domain.StatusDraft))
		assert.False(t, ok)
	})

	t.Run("approver sees revision under review", func(t *testing.T) {
		ok, _ := svc.CanView(approver, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.True(t, ok)
	})

	t.Run("sv flag grants reviewer visibility", func(t *testing.T) {
		ok, _ := svc.CanView(svUser, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.True(t, ok)
	})

	t.Run("approved revision is visible to everyone", func(t *testing.T) {
		ok, _ := svc.CanView(stranger, newTestRevision(proposerID, domain.StatusApproved))
		assert.True(t, ok)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		for _, status := range []domain.RevisionStatus{
			domain.StatusDraft, domain.StatusUnderReview, domain.StatusApproved,
			domain.StatusRejected, domain.StatusRevisionRequested, domain.StatusWithdrawn,
		} {
			ok, _ := svc.CanView(admin, newTestRevision(proposerID, status))
			assert.True(t, ok, "admin should view %s", status)
		}
	})
}

func TestCanEdit(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	stranger := domain.Principal{ID: uuid.New(), Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}
	admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("proposer edits own draft", func(t *testing.T) {
		ok, _ := svc.CanEdit(proposer, newTestRevision(proposerID, domain.StatusDraft))
		assert.True(t, ok)
	})

	t.Run("proposer cannot edit while under review", func(t *testing.T) {
		ok, _ := svc.CanEdit(proposer, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.False(t, ok)
	})

	t.Run("approver edits revision under review", func(t *testing.T) {
		ok, _ := svc.CanEdit(approver, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.True(t, ok)
	})

	t.Run("proposer and approver edit after modification request", func(t *testing.T) {
		revision := newTestRevision(proposerID, domain.StatusRevisionRequested)
		ok, _ := svc.CanEdit(proposer, revision)
		assert.True(t, ok)
		ok, _ = svc.CanEdit(approver, revision)
		assert.True(t, ok)
		ok, _ = svc.CanEdit(stranger, revision)
		assert.False(t, ok)
	})

	t.Run("terminal statuses are not editable", func(t *testing.T) {
		for _, status := range []domain.RevisionStatus{
			domain.StatusApproved, domain.StatusRejected, domain.StatusWithdrawn,
		} {
			ok, _ := svc.CanEdit(proposer, newTestRevision(proposerID, status))
			assert.False(t, ok, "proposer must not edit %s", status)
			ok, _ = svc.CanEdit(approver, newTestRevision(proposerID, status))
			assert.False(t, ok, "approver must not edit %s", status)
			ok, _ = svc.CanEdit(admin, newTestRevision(proposerID, status))
			assert.True(t, ok, "admin override applies to %s", status)
		}
	})
}

func TestCanDelete(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}
	admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("proposer deletes own draft", func(t *testing.T) {
		ok, _ := svc.CanDelete(proposer, newTestRevision(proposerID, domain.StatusDraft))
		assert.True(t, ok)
	})

	t.Run("approver cannot delete another user's draft", func(t *testing.T) {
		ok, _ := svc.CanDelete(approver, newTestRevision(proposerID, domain.StatusDraft))
		assert.False(t, ok)
	})

	t.Run("non-draft is not deletable even by proposer", func(t *testing.T) {
		ok, reason := svc.CanDelete(proposer, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.False(t, ok)
		assert.Equal(t, "only draft revisions may be deleted", reason)
	})

	t.Run("admin deletes regardless of status", func(t *testing.T) {
		ok, _ := svc.CanDelete(admin, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.True(t, ok)
	})
}

func TestReviewActions(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}
	supervisor := domain.Principal{ID: uuid.New(), Role: domain.RoleSupervisor}

	t.Run("approve and reject share preconditions", func(t *testing.T) {
		for _, status := range []domain.RevisionStatus{
			domain.StatusUnderReview, domain.StatusRevisionRequested,
		} {
			revision := newTestRevision(proposerID, status)
			ok, _ := svc.CanApprove(approver, revision)
			assert.True(t, ok, "approve from %s", status)
			ok, _ = svc.CanReject(supervisor, revision)
			assert.True(t, ok, "reject from %s", status)
		}
	})

	t.Run("proposer without reviewer role cannot approve own revision", func(t *testing.T) {
		ok, _ := svc.CanApprove(proposer, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.False(t, ok)
	})

	t.Run("modification request only while under review", func(t *testing.T) {
		ok, _ := svc.CanRequestModification(approver, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.True(t, ok)
		ok, _ = svc.CanRequestModification(approver, newTestRevision(proposerID, domain.StatusRevisionRequested))
		assert.False(t, ok)
	})

	t.Run("review actions rejected on terminal statuses", func(t *testing.T) {
		for _, status := range []domain.RevisionStatus{
			domain.StatusApproved, domain.StatusRejected, domain.StatusWithdrawn,
		} {
			revision := newTestRevision(proposerID, status)
			ok, _ := svc.CanApprove(approver, revision)
			assert.False(t, ok, "approve from %s", status)
			ok, _ = svc.CanReject(approver, revision)
			assert.False(t, ok, "reject from %s", status)
		}
	})
}

func TestCanSubmitAndWithdraw(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}

	t.Run("proposer submits draft and resubmits after modification request", func(t *testing.T) {
		ok, _ := svc.CanSubmit(proposer, newTestRevision(proposerID, domain.StatusDraft))
		assert.True(t, ok)
		ok, _ = svc.CanSubmit(proposer, newTestRevision(proposerID, domain.StatusRevisionRequested))
		assert.True(t, ok)
	})

	t.Run("approver cannot submit another user's revision", func(t *testing.T) {
		ok, _ := svc.CanSubmit(approver, newTestRevision(proposerID, domain.StatusDraft))
		assert.False(t, ok)
	})

	t.Run("withdraw allowed from active statuses only", func(t *testing.T) {
		for _, status := range []domain.RevisionStatus{
			domain.StatusDraft, domain.StatusUnderReview, domain.StatusRevisionRequested,
		} {
			ok, _ := svc.CanWithdraw(proposer, newTestRevision(proposerID, status))
			assert.True(t, ok, "withdraw from %s", status)
		}
		for _, status := range []domain.RevisionStatus{
			domain.StatusApproved, domain.StatusRejected, domain.StatusWithdrawn,
		} {
			ok, _ := svc.CanWithdraw(proposer, newTestRevision(proposerID, status))
			assert.False(t, ok, "withdraw from %s", status)
		}
	})
}

// Granting a permission must always list the matching action, and vice versa.
func TestAvailableActionsMatchesMatrix(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()

	actors := map[string]domain.Principal{
		"proposer":   {ID: proposerID, Role: domain.RoleGeneral},
		"stranger":   {ID: uuid.New(), Role: domain.RoleGeneral},
		"approver":   {ID: uuid.New(), Role: domain.RoleApprover},
		"supervisor": {ID: uuid.New(), Role: domain.RoleSupervisor},
		"sv-general": {ID: uuid.New(), Role: domain.RoleGeneral, IsSV: true},
		"admin":      {ID: uuid.New(), Role: domain.RoleAdmin},
	}
	statuses := []domain.RevisionStatus{
		domain.StatusDraft, domain.StatusUnderReview, domain.StatusApproved,
		domain.StatusRejected, domain.StatusRevisionRequested, domain.StatusWithdrawn,
	}

	contains := func(actions []string, action string) bool {
		for _, a := range actions {
			if a == action {
				return true
			}
		}
		return false
	}

	for name, actor := range actors {
		for _, status := range statuses {
			revision := newTestRevision(proposerID, status)
			actions := svc.AvailableActions(actor, revision)

			checks := map[string]func(domain.Principal, *domain.Revision) (bool, string){
				ActionView:                svc.CanView,
				ActionEdit:                svc.CanEdit,
				ActionDelete:              svc.CanDelete,
				ActionSubmit:              svc.CanSubmit,
				ActionWithdraw:            svc.CanWithdraw,
				ActionApprove:             svc.CanApprove,
				ActionReject:              svc.CanReject,
				ActionRequestModification: svc.CanRequestModification,
			}
			for action, fn := range checks {
				allowed, _ := fn(actor, revision)
				assert.Equal(t, allowed, contains(actions, action),
					"%s on %s: %s mismatch", name, status, action)
			}
		}
	}
}

func TestAvailableActionsOrdering(t *testing.T) {
	svc := NewPermissionService()
	proposerID := uuid.New()
	proposer := domain.Principal{ID: proposerID, Role: domain.RoleGeneral}
	approver := domain.Principal{ID: uuid.New(), Role: domain.RoleApprover}

	t.Run("proposer on own draft", func(t *testing.T) {
		actions := svc.AvailableActions(proposer, newTestRevision(proposerID, domain.StatusDraft))
		assert.Equal(t, []string{ActionView, ActionEdit, ActionDelete, ActionSubmit, ActionWithdraw}, actions)
	})

	t.Run("approver on revision under review", func(t *testing.T) {
		actions := svc.AvailableActions(approver, newTestRevision(proposerID, domain.StatusUnderReview))
		assert.Equal(t, []string{ActionView, ActionEdit, ActionApprove, ActionReject, ActionRequestModification}, actions)
	})

	t.Run("stranger on withdrawn revision gets nothing", func(t *testing.T) {
		stranger := domain.Principal{ID: uuid.New(), Role: domain.RoleGeneral}
		actions := svc.AvailableActions(stranger, newTestRevision(proposerID, domain.StatusWithdrawn))
		assert.Empty(t, actions)
	})
}
