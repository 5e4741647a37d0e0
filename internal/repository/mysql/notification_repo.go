package mysql

import (
	"time"

	"gorm.io/gorm"

	"discussify/internal/model"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

// List returns a newest-first page, with the total and unread counts for the
// owner alongside.
func (r *NotificationRepository) List(userID uint64, unreadOnly bool, offset, limit int) ([]model.Notification, int64, int64, error) {
	q := r.DB.Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	var unread int64
	if err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}
	var list []model.Notification
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, unread, err
}

func (r *NotificationRepository) MarkRead(id, userID uint64) (bool, error) {
	now := time.Now()
	res := r.DB.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) MarkAllRead(userID uint64) error {
	now := time.Now()
	return r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepository) Delete(id, userID uint64) (bool, error) {
	res := r.DB.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Notification{})
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) DeleteAll(userID uint64) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.Notification{}).Error
}

func (r *NotificationRepository) CountUnread(userID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// ListUnreadByType feeds the duplicate-invite check; payload matching
// happens in the service layer.
func (r *NotificationRepository) ListUnreadByType(userID uint64, typ string) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.Where("user_id = ? AND type = ? AND is_read = ?", userID, typ, false).
		Find(&list).Error
	return list, err
}

// RecentAll is the site-wide activity feed for the admin dashboard.
func (r *NotificationRepository) RecentAll(offset, limit int) ([]model.Notification, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Notification
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}
