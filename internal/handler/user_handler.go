package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"discussify/internal/middleware"
	"discussify/internal/model"
	"discussify/internal/service"
)

type UserHandler struct {
	users      *service.UserService
	membership *service.MembershipService
	uploadDir  string
}

func NewUserHandler(users *service.UserService, membership *service.MembershipService, uploadDir string) *UserHandler {
	return &UserHandler{users: users, membership: membership, uploadDir: uploadDir}
}

// Register accepts multipart form data so the avatar can ride along with the
// account fields.
func (h *UserHandler) Register(c *gin.Context) {
	in := service.RegisterInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
		Bio:       c.PostForm("bio"),
		Interests: c.PostFormArray("interests"),
	}
	if file, err := c.FormFile("avatar"); err == nil {
		path, err := saveUpload(c, file, h.uploadDir)
		if err != nil {
			fail(c, err)
			return
		}
		in.Avatar = path
	}

	user, pair, code, err := h.users.Register(in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"msg": "registered, verify your email",
		"data": gin.H{
			"user":       user,
			"tokens":     pair,
			"verify_otp": code,
		},
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email and password are required"})
		return
	}
	user, pair, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user, "tokens": pair})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "logged out")
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "refresh_token is required"})
		return
	}
	pair, err := h.users.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, pair)
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email and code are required"})
		return
	}
	user, err := h.users.VerifyEmail(req.Email, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (h *UserHandler) ResendVerifyCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email is required"})
		return
	}
	if _, err := h.users.ResendVerifyCode(req.Email); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "verification code sent")
}

// ForgotPassword always reports success so the endpoint cannot confirm
// whether an address is registered.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email is required"})
		return
	}
	if err := h.users.ForgotPassword(req.Email); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "if that email is registered, a reset code was sent")
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "email, code and password are required"})
		return
	}
	if err := h.users.ResetPassword(req.Email, req.Code, req.Password); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "password reset")
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "old_password and new_password are required"})
		return
	}
	if err := h.users.ChangePassword(middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "password changed, please log in again")
}

// Me returns the account plus the communities derived from the membership
// table.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	joined, err := h.membership.Joined(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user, "joined_communities": joined})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	in := service.UpdateProfileInput{}
	if v, present := c.GetPostForm("username"); present {
		in.Username = &v
	}
	if v, present := c.GetPostForm("bio"); present {
		in.Bio = &v
	}
	if values, present := c.GetPostFormArray("interests"); present {
		in.Interests = values
	}
	if file, err := c.FormFile("avatar"); err == nil {
		path, err := saveUpload(c, file, h.uploadDir)
		if err != nil {
			fail(c, err)
			return
		}
		in.Avatar = path
	}

	user, oldAvatar, err := h.users.UpdateProfile(middleware.UserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	if oldAvatar != "" {
		if err := os.Remove(oldAvatar); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", oldAvatar).Msg("stale avatar cleanup failed")
		}
	}
	ok(c, user)
}

func (h *UserHandler) Categories(c *gin.Context) {
	ok(c, model.Categories)
}
