package models

import (
	"time"

	"gorm.io/gorm"
)

// Who may invite a user to private papers.
const (
	InvitesFromEveryone = 0
	InvitesFromFollowed = 1
	InvitesFromNobody   = 2
)

type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Username             string         `gorm:"size:100;uniqueIndex" json:"username"`
	Slug                 string         `gorm:"size:100;index" json:"slug"`
	Email                string         `gorm:"uniqueIndex;size:100" json:"email"`
	Status               string         `gorm:"size:20;default:'active'" json:"status"`
	Roles                []Role         `gorm:"many2many:user_roles" json:"roles,omitempty"`
	LimitsPrivateInvites int            `gorm:"default:0" json:"limits_private_invites"`
	Blocking             []*User        `gorm:"many2many:user_blocks;joinForeignKey:UserID;joinReferences:BlockedID" json:"-"`
	Following            []*User        `gorm:"many2many:user_follows;joinForeignKey:UserID;joinReferences:FollowedID" json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsBlocking reports whether u blocks userID. Blocking must be preloaded.
func (u *User) IsBlocking(userID uint) bool {
	for _, b := range u.Blocking {
		if b.ID == userID {
			return true
		}
	}
	return false
}

// IsFollowing reports whether u follows userID. Following must be preloaded.
func (u *User) IsFollowing(userID uint) bool {
	for _, f := range u.Following {
		if f.ID == userID {
			return true
		}
	}
	return false
}

func (u *User) CanBeMessagedByNobody() bool {
	return u.LimitsPrivateInvites == InvitesFromNobody
}

func (u *User) CanBeMessagedByFollowed() bool {
	return u.LimitsPrivateInvites == InvitesFromFollowed
}

