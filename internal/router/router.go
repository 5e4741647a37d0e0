package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"discussify/internal/handler"
	"discussify/internal/middleware"
	redisrepo "discussify/internal/repository/redis"
	"discussify/internal/service"
)

// Deps carries the external collaborators the routes need. Publisher and
// Mailer may be nil; those side channels are then skipped.
type Deps struct {
	DB        *gorm.DB
	Publisher service.Publisher
	Mailer    service.Mailer
	UploadDir string
}

func New(deps Deps) *gin.Engine {
	sessions := &redisrepo.SessionRepository{}

	notifications := service.NewNotificationService(deps.DB)
	membership := service.NewMembershipService(deps.DB, notifications)
	communities := service.NewCommunityService(deps.DB, notifications)
	posts := service.NewPostService(deps.DB, notifications, deps.Publisher)
	users := service.NewUserService(deps.DB, notifications, sessions, deps.Mailer)
	admin := service.NewAdminService(deps.DB, membership)

	userH := handler.NewUserHandler(users, membership, deps.UploadDir)
	communityH := handler.NewCommunityHandler(communities, membership, users, deps.UploadDir)
	postH := handler.NewPostHandler(posts, users, deps.UploadDir)
	notificationH := handler.NewNotificationHandler(notifications)
	adminH := handler.NewAdminHandler(admin, communities, notifications)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Static("/uploads", deps.UploadDir)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", userH.Register)
		auth.POST("/login", userH.Login)
		auth.POST("/refresh", userH.Refresh)
		auth.POST("/verify-email", userH.VerifyEmail)
		auth.POST("/resend-code", userH.ResendVerifyCode)
		auth.POST("/forgot-password", userH.ForgotPassword)
		auth.POST("/reset-password", userH.ResetPassword)
	}

	authed := api.Group("", middleware.Auth(sessions))
	{
		authed.POST("/auth/logout", userH.Logout)
		authed.POST("/auth/change-password", userH.ChangePassword)

		user := authed.Group("/user")
		{
			user.GET("/me", userH.Me)
			user.PUT("/me", userH.UpdateProfile)
			user.GET("/categories", userH.Categories)
		}

		community := authed.Group("/communities")
		{
			community.POST("", communityH.Create)
			community.GET("/popular", communityH.Popular)
			community.GET("/discover", communityH.Discover)
			community.GET("/recommended", communityH.Recommended)
			community.GET("/mine", communityH.Mine)
			community.GET("/:community", communityH.Get)
			community.GET("/:community/posts", postH.ListByCommunity)
			community.POST("/:community/join", communityH.Join)
			community.POST("/:community/leave", communityH.Leave)
			community.POST("/:community/invite", communityH.Invite)
			community.POST("/:community/ban/:user_id", communityH.Ban)
			community.POST("/:community/unban/:user_id", communityH.Unban)
		}

		post := authed.Group("/posts")
		{
			post.POST("", postH.Create)
			post.GET("/:post_id", postH.Get)
			post.DELETE("/:post_id", postH.Delete)
			post.POST("/:post_id/vote", postH.Vote)
			post.POST("/:post_id/report", postH.Report)
			post.POST("/:post_id/comments", postH.Comment)
			post.GET("/:post_id/comments", postH.ListComments)
		}

		comment := authed.Group("/comments")
		{
			comment.POST("/:comment_id/vote", postH.VoteComment)
			comment.DELETE("/:comment_id", postH.DeleteComment)
		}

		notification := authed.Group("/notifications")
		{
			notification.GET("", notificationH.List)
			notification.GET("/unread-count", notificationH.UnreadCount)
			notification.PUT("/read-all", notificationH.MarkAllRead)
			notification.PUT("/:notification_id/read", notificationH.MarkRead)
			notification.DELETE("/:notification_id", notificationH.Delete)
			notification.DELETE("", notificationH.DeleteAll)
		}

		adminGroup := authed.Group("/admin", middleware.RequireAdmin(deps.DB))
		{
			adminGroup.GET("/analytics", adminH.Analytics)
			adminGroup.GET("/activity", adminH.RecentActivity)
			adminGroup.GET("/users", adminH.ListUsers)
			adminGroup.PUT("/users/:user_id", adminH.UpdateUser)
			adminGroup.GET("/communities", adminH.ListCommunities)
			adminGroup.GET("/communities/:community_id/posts", adminH.CommunityPosts)
			adminGroup.PUT("/posts/:post_id", adminH.EditPost)
			adminGroup.DELETE("/posts/:post_id", adminH.DeletePost)
			adminGroup.GET("/posts/:post_id/reports", adminH.PostReports)
			adminGroup.DELETE("/posts/:post_id/reports", adminH.ClearReports)
			adminGroup.POST("/posts/:post_id/report", adminH.ReportPost)
		}
	}

	return r
}
