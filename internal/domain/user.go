package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what a user is allowed to do in the revision workflow.
type Role string

const (
	RoleGeneral    Role = "general"
	RoleSupervisor Role = "supervisor"
	RoleApprover   Role = "approver"
	RoleAdmin      Role = "admin"
)

// User represents an account in the knowledge-base portal
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(50);uniqueIndex" json:"username"`
	FullName  string    `gorm:"column:full_name;type:varchar(100)" json:"full_name"`
	Email     string    `gorm:"column:email;type:varchar(255)" json:"email"`
	Role      Role      `gorm:"column:role;type:varchar(20);default:general" json:"role"`
	IsSV      bool      `gorm:"column:is_sv" json:"is_sv"`
	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string { return "users" }

// Principal is the authenticated actor resolved by the auth layer.
// The workflow core only authorizes; it never authenticates.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
	IsSV bool      `json:"is_sv"`
}

// IsAdmin reports whether the actor short-circuits every permission rule.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsReviewer reports whether the actor carries approver-level privileges.
// The supervisor flag grants them regardless of role.
func (p Principal) IsReviewer() bool {
	return p.Role == RoleApprover || p.Role == RoleSupervisor || p.IsSV
}

// CanAct reports whether a role may perform approve/reject/request-modification.
func CanAct(role Role) bool {
	return role == RoleAdmin || role == RoleApprover || role == RoleSupervisor
}
