package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityHidden  = "hidden"
)

const (
	MemberRoleMember    = "member"
	MemberRoleModerator = "moderator"
	MemberRoleAdmin     = "admin"
)

type Community struct {
	ID          uint64                      `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Slug        string                      `gorm:"uniqueIndex;size:80;not null" json:"slug"`
	Description string                      `gorm:"type:text" json:"description"`
	Categories  datatypes.JSONSlice[string] `json:"categories"`
	CoverImage  string                      `gorm:"size:255" json:"cover_image"`
	Visibility  string                      `gorm:"size:16;not null;default:public" json:"visibility"`
	IsActive    bool                        `gorm:"not null;default:true" json:"is_active"`

	// AdminID is the owning account, set at creation.
	AdminID uint64 `gorm:"not null;index" json:"admin_id"`

	// MemberCount is denormalized from community_members and recomputed in
	// the same transaction as every membership mutation.
	MemberCount int64 `gorm:"not null;default:0" json:"member_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommunityMember is the source of truth for membership; an account's joined
// set is derived by querying it.
type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"community_id"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"user_id"`
	Role        string    `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

type CommunityBan struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_ban" json:"community_id"`
	UserID      uint64    `gorm:"not null;uniqueIndex:uk_community_ban" json:"user_id"`
	Reason      string    `gorm:"size:255" json:"reason"`
	BannedAt    time.Time `gorm:"autoCreateTime" json:"banned_at"`
}
