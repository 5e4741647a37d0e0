package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationOTP       = "otp"
	NotificationWelcome   = "welcome"
	NotificationInfo      = "info"
	NotificationWarning   = "warning"
	NotificationCommunity = "community"
	NotificationPost      = "post"
	NotificationComment   = "comment"
	NotificationInvite    = "community-invite"
)

// Notification is owned by its recipient; it is never mutated except to
// toggle the read state.
type Notification struct {
	ID      uint64             `gorm:"primaryKey" json:"id"`
	UserID  uint64             `gorm:"not null;index:idx_notif_user_time,priority:1;index:idx_notif_user_read,priority:1" json:"user_id"`
	Type    string             `gorm:"size:24;not null" json:"type"`
	Title   string             `gorm:"size:128;not null" json:"title"`
	Message string             `gorm:"size:500;not null" json:"message"`
	Data    datatypes.JSONMap  `json:"data"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notif_user_read,priority:2" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `gorm:"index:idx_notif_user_time,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
