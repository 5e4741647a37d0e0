package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"
	PostTypeLink  = "link"
	PostTypePoll  = "poll"
)

const (
	MaxPostLength    = 10000
	MaxCommentLength = 5000
)

type Post struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	CommunityID uint64 `gorm:"not null;index:idx_post_community_time,priority:1" json:"community_id"`
	AuthorID    uint64 `gorm:"not null;index" json:"author_id"`

	Body     string                      `gorm:"type:text;not null" json:"body"`
	Type     string                      `gorm:"size:16;not null;default:text" json:"type"`
	Images   datatypes.JSONSlice[string] `json:"images"`
	VideoURL string                      `gorm:"size:255" json:"video_url"`
	LinkURL  string                      `gorm:"size:255" json:"link_url"`

	// VoteCount is denormalized: sum of post_votes values.
	VoteCount    int64 `gorm:"not null;default:0" json:"vote_count"`
	CommentCount int64 `gorm:"not null;default:0" json:"comment_count"`

	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
	EditedAt  *time.Time `json:"edited_at"`

	CreatedAt time.Time `gorm:"index:idx_post_community_time,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID       uint64  `gorm:"primaryKey" json:"id"`
	PostID   uint64  `gorm:"not null;index" json:"post_id"`
	AuthorID uint64  `gorm:"not null;index" json:"author_id"`
	ParentID *uint64 `gorm:"index" json:"parent_id"`

	Body      string `gorm:"type:text;not null" json:"body"`
	VoteCount int64  `gorm:"not null;default:0" json:"vote_count"`

	IsDeleted bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vote values; an account holds at most one row per subject.
const (
	VoteUp   int8 = 1
	VoteDown int8 = -1
)

type PostVote struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index;uniqueIndex:uk_post_vote" json:"post_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_post_vote" json:"user_id"`
	Value     int8      `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentVote struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	CommentID uint64    `gorm:"not null;index;uniqueIndex:uk_comment_vote" json:"comment_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_comment_vote" json:"user_id"`
	Value     int8      `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostReport rows are append-only; the same reporter may report repeatedly.
type PostReport struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	PostID     uint64    `gorm:"not null;index" json:"post_id"`
	ReporterID uint64    `gorm:"not null" json:"reporter_id"`
	Reason     string    `gorm:"size:500;not null" json:"reason"`
	ReportedAt time.Time `gorm:"autoCreateTime" json:"reported_at"`
}
