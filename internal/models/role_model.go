package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SpecialRoleAnonymous     = "anonymous"
	SpecialRoleAuthenticated = "authenticated"
)

// ACLFragment is one role's partial permission assignment, key -> level.
type ACLFragment map[string]int

type Role struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	Name        string                          `gorm:"size:100;uniqueIndex" json:"name"`
	SpecialRole string                          `gorm:"size:30;index" json:"special_role,omitempty"`
	Description string                          `json:"description"`
	Permissions datatypes.JSONType[ACLFragment] `json:"permissions"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt                  `gorm:"index" json:"-"`
}

func (r Role) Fragment() ACLFragment {
	return r.Permissions.Data()
}

// CategoryRole is a fragment scoped to a category through RoleCategoryACL.
type CategoryRole struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	Name        string                          `gorm:"size:100;uniqueIndex" json:"name"`
	Permissions datatypes.JSONType[ACLFragment] `json:"permissions"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

func (r CategoryRole) Fragment() ACLFragment {
	return r.Permissions.Data()
}

type RoleCategoryACL struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	RoleID         uint          `gorm:"index:idx_role_category,unique" json:"role_id"`
	CategoryID     uint          `gorm:"index:idx_role_category,unique" json:"category_id"`
	CategoryRoleID uint          `json:"category_role_id"`
	CategoryRole   *CategoryRole `gorm:"foreignKey:CategoryRoleID" json:"category_role,omitempty"`
}
