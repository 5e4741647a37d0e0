package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"discussify/internal/middleware"
	"discussify/internal/service"
)

type CommunityHandler struct {
	communities *service.CommunityService
	membership  *service.MembershipService
	users       *service.UserService
	uploadDir   string
}

func NewCommunityHandler(communities *service.CommunityService, membership *service.MembershipService, users *service.UserService, uploadDir string) *CommunityHandler {
	return &CommunityHandler{communities: communities, membership: membership, users: users, uploadDir: uploadDir}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	user, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	in := service.CreateCommunityInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Categories:  c.PostFormArray("categories"),
		Visibility:  c.PostForm("visibility"),
	}
	if file, err := c.FormFile("cover_image"); err == nil {
		path, err := saveUpload(c, file, h.uploadDir)
		if err != nil {
			fail(c, err)
			return
		}
		in.CoverImage = path
	}

	community, err := h.communities.Create(user, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "community created", "data": community})
}

// Get resolves by numeric ID or slug and includes the member roster.
func (h *CommunityHandler) Get(c *gin.Context) {
	token := c.Param("community")
	community, err := h.communities.Get(middleware.UserID(c), token)
	if err != nil {
		fail(c, err)
		return
	}
	members, err := h.membership.Members(token)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"community": community, "members": members})
}

func (h *CommunityHandler) Mine(c *gin.Context) {
	list, err := h.membership.Joined(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *CommunityHandler) Popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := h.communities.Popular(limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *CommunityHandler) Discover(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := h.communities.Discoverable(middleware.UserID(c), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *CommunityHandler) Recommended(c *gin.Context) {
	user, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.communities.Recommended(user)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	community, err := h.membership.Join(middleware.UserID(c), c.Param("community"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, community)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	community, err := h.membership.Leave(middleware.UserID(c), c.Param("community"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, community)
}

func (h *CommunityHandler) Invite(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email is required"})
		return
	}
	if err := h.membership.Invite(middleware.UserID(c), c.Param("community"), req.Email); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "invite sent")
}

func (h *CommunityHandler) Ban(c *gin.Context) {
	userID, valid := paramID(c, "user_id")
	if !valid {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := h.membership.Ban(middleware.UserID(c), c.Param("community"), userID, req.Reason); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "user banned")
}

func (h *CommunityHandler) Unban(c *gin.Context) {
	userID, valid := paramID(c, "user_id")
	if !valid {
		return
	}
	if err := h.membership.Unban(middleware.UserID(c), c.Param("community"), userID); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "user unbanned")
}
