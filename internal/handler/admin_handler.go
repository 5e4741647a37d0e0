package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"discussify/internal/middleware"
	"discussify/internal/service"
)

type AdminHandler struct {
	admin         *service.AdminService
	communities   *service.CommunityService
	notifications *service.NotificationService
}

func NewAdminHandler(admin *service.AdminService, communities *service.CommunityService, notifications *service.NotificationService) *AdminHandler {
	return &AdminHandler{admin: admin, communities: communities, notifications: notifications}
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	a, err := h.admin.Analytics()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := pageArgs(c)
	list, total, err := h.admin.ListUsers(page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": list, "total": total, "page": page})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	targetID, valid := paramID(c, "user_id")
	if !valid {
		return
	}
	var req struct {
		Role              *string  `json:"role"`
		IsActive          *bool    `json:"is_active"`
		Bio               *string  `json:"bio"`
		AddCommunities    []uint64 `json:"add_communities"`
		RemoveCommunities []uint64 `json:"remove_communities"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request body"})
		return
	}
	user, joined, err := h.admin.UpdateUser(middleware.UserID(c), targetID, service.AdminUpdateUserInput{
		Role:              req.Role,
		IsActive:          req.IsActive,
		Bio:               req.Bio,
		AddCommunities:    req.AddCommunities,
		RemoveCommunities: req.RemoveCommunities,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user, "joined_communities": joined})
}

func (h *AdminHandler) ListCommunities(c *gin.Context) {
	page, size := pageArgs(c)
	list, total, err := h.communities.ListAll(page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"communities": list, "total": total, "page": page})
}

func (h *AdminHandler) CommunityPosts(c *gin.Context) {
	communityID, valid := paramID(c, "community_id")
	if !valid {
		return
	}
	page, size := pageArgs(c)
	list, total, err := h.admin.CommunityPosts(communityID, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"posts": list, "total": total, "page": page})
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	if err := h.admin.DeletePost(id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "post deleted")
}

func (h *AdminHandler) EditPost(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "body is required"})
		return
	}
	post, err := h.admin.EditPost(id, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, post)
}

func (h *AdminHandler) PostReports(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	reports, err := h.admin.PostReports(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, reports)
}

func (h *AdminHandler) ClearReports(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	if err := h.admin.ClearReports(id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "reports cleared")
}

func (h *AdminHandler) ReportPost(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "reason is required"})
		return
	}
	if err := h.admin.ReportPost(middleware.UserID(c), id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "post reported")
}

func (h *AdminHandler) RecentActivity(c *gin.Context) {
	page, size := pageArgs(c)
	list, total, err := h.notifications.RecentActivity(page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"activity": list, "total": total, "page": page})
}
