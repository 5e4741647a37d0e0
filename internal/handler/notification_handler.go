package handler

import (
	"github.com/gin-gonic/gin"

	"discussify/internal/middleware"
	"discussify/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, size := pageArgs(c)
	unreadOnly := c.Query("unread") == "true"
	list, total, unread, err := h.notifications.List(middleware.UserID(c), unreadOnly, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"notifications": list,
		"total":         total,
		"unread":        unread,
		"page":          page,
	})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, valid := paramID(c, "notification_id")
	if !valid {
		return
	}
	if err := h.notifications.MarkRead(middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "marked read")
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "all marked read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "notification_id")
	if !valid {
		return
	}
	if err := h.notifications.Delete(middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "notification deleted")
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	if err := h.notifications.DeleteAll(middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "all notifications deleted")
}
