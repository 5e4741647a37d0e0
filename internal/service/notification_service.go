package service

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"discussify/internal/apperr"
	"discussify/internal/model"
	"discussify/internal/repository/mysql"
)

type NotificationService struct {
	repo *mysql.NotificationRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{repo: &mysql.NotificationRepository{DB: db}}
}

// Push records a notification best-effort. Side channels never fail the
// operation that triggered them; storage errors are logged and swallowed.
func (s *NotificationService) Push(userID uint64, typ, title, message string, data map[string]any) {
	if err := s.Create(userID, typ, title, message, data); err != nil {
		log.Warn().Err(err).Uint64("user", userID).Str("type", typ).
			Msg("notification push failed")
	}
}

// Create records a notification and reports failure, for the flows where the
// notification itself is the point of the operation.
func (s *NotificationService) Create(userID uint64, typ, title, message string, data map[string]any) error {
	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if data != nil {
		n.Data = datatypes.JSONMap(data)
	}
	return s.repo.Create(n)
}

func (s *NotificationService) List(userID uint64, unreadOnly bool, page, size int) ([]model.Notification, int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.repo.List(userID, unreadOnly, (page-1)*size, size)
}

func (s *NotificationService) UnreadCount(userID uint64) (int64, error) {
	return s.repo.CountUnread(userID)
}

func (s *NotificationService) MarkRead(userID, id uint64) error {
	ok, err := s.repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint64) error {
	return s.repo.MarkAllRead(userID)
}

func (s *NotificationService) Delete(userID, id uint64) error {
	ok, err := s.repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) DeleteAll(userID uint64) error {
	return s.repo.DeleteAll(userID)
}

// RecentActivity is the sitewide feed for the admin panel.
func (s *NotificationService) RecentActivity(page, size int) ([]model.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.repo.RecentAll((page-1)*size, size)
}

// HasPendingInvite reports whether the user already holds an unread invite
// for the community. JSON round-trips numeric payload values as float64.
func (s *NotificationService) HasPendingInvite(userID, communityID uint64) (bool, error) {
	list, err := s.repo.ListUnreadByType(userID, model.NotificationInvite)
	if err != nil {
		return false, err
	}
	for _, n := range list {
		if payloadID(n.Data["communityId"]) == communityID {
			return true, nil
		}
	}
	return false, nil
}

// payloadID normalizes a numeric payload value. JSONMap decodes with
// UseNumber, so values read back from storage arrive as json.Number;
// in-process values keep their original Go type.
func payloadID(v any) uint64 {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0
		}
		return uint64(n)
	case float64:
		return uint64(x)
	case uint64:
		return x
	case int64:
		return uint64(x)
	case int:
		return uint64(x)
	}
	return 0
}
