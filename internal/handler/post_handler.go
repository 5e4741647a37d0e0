package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"discussify/internal/middleware"
	"discussify/internal/service"
)

type PostHandler struct {
	posts     *service.PostService
	users     *service.UserService
	uploadDir string
}

func NewPostHandler(posts *service.PostService, users *service.UserService, uploadDir string) *PostHandler {
	return &PostHandler{posts: posts, users: users, uploadDir: uploadDir}
}

// Create accepts multipart form data; uploaded files decide the post type.
func (h *PostHandler) Create(c *gin.Context) {
	author, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	communityID, err := strconv.ParseUint(c.PostForm("community_id"), 10, 64)
	if err != nil || communityID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "community_id is required"})
		return
	}
	in := service.CreatePostInput{
		CommunityID: communityID,
		Body:        c.PostForm("body"),
		LinkURL:     c.PostForm("link_url"),
	}
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, file := range form.File["media"] {
			path, err := saveUpload(c, file, h.uploadDir)
			if err != nil {
				fail(c, err)
				return
			}
			in.MediaPaths = append(in.MediaPaths, path)
		}
	}

	post, err := h.posts.Create(c.Request.Context(), author, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "post created", "data": post})
}

func (h *PostHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	post, err := h.posts.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	vote, err := h.posts.ViewerVote(middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"post": post, "my_vote": vote})
}

func (h *PostHandler) ListByCommunity(c *gin.Context) {
	page, size := pageArgs(c)
	list, total, err := h.posts.ListByCommunity(middleware.UserID(c), c.Param("community"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"posts": list, "total": total, "page": page})
}

func (h *PostHandler) Vote(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "direction is required"})
		return
	}
	post, err := h.posts.Vote(c.Request.Context(), middleware.UserID(c), id, req.Direction)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	actor, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.posts.Delete(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "post deleted")
}

func (h *PostHandler) Report(c *gin.Context) {
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
	if err := h.posts.Report(middleware.UserID(c), id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "post reported")
}

func (h *PostHandler) Comment(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	author, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	var req struct {
		Body     string  `json:"body" binding:"required"`
		ParentID *uint64 `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "body is required"})
		return
	}
	comment, err := h.posts.Comment(c.Request.Context(), author, id, req.Body, req.ParentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "comment created", "data": comment})
}

func (h *PostHandler) ListComments(c *gin.Context) {
	id, valid := paramID(c, "post_id")
	if !valid {
		return
	}
	page, size := pageArgs(c)
	list, total, err := h.posts.ListComments(id, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"comments": list, "total": total, "page": page})
}

func (h *PostHandler) VoteComment(c *gin.Context) {
	id, valid := paramID(c, "comment_id")
	if !valid {
		return
	}
	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "direction is required"})
		return
	}
	comment, err := h.posts.VoteComment(middleware.UserID(c), id, req.Direction)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, comment)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	id, valid := paramID(c, "comment_id")
	if !valid {
		return
	}
	actor, err := h.users.Get(middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.posts.DeleteComment(actor, id); err != nil {
		fail(c, err)
		return
	}
	okMsg(c, "comment deleted")
}
