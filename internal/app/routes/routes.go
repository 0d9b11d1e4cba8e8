package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/controllers"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
)

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Feed         *controllers.FeedController
	Event        *controllers.EventController
	Task         *controllers.TaskController
	Chat         *controllers.ChatController
	Notification *controllers.NotificationController
	Engagement   *controllers.EngagementController
	Donation     *controllers.DonationController
	Studio       *controllers.StudioController
	Admin        *controllers.AdminController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c *Controllers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	wsHandler *websocket.Handler,
) {
	// Real-time stream authenticates with the token query parameter
	router.GET("/api/v1/ws", wsHandler.HandleConnection)

	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Limit("auth"))
	{
		auth.POST("/register", c.Auth.Register)
		auth.GET("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/resend-verification", c.Auth.ResendVerification)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/2fa/login", c.Auth.LoginTwoFactor)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// --- Public routes that personalise the answer when a token is sent ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/events", c.Event.ListEvents)
		public.GET("/events/:id", c.Event.GetEvent)
		public.GET("/campaigns", c.Donation.ListCampaigns)
		public.GET("/campaigns/:id", c.Donation.GetCampaign)
		public.GET("/announcements", c.Feed.ListAnnouncements)
		public.GET("/slideshows", c.Engagement.ActiveSlides)
		public.GET("/profiles/:id", c.User.GetProfile)
		public.GET("/profiles/:id/achievements", c.User.ListAchievements)
		public.GET("/chatbot/faq", c.Studio.ListFAQ)
		public.POST("/chatbot/ask", rateLimiter.Limit("chatbot"), c.Studio.Ask)
		public.POST("/error-logs", rateLimiter.Limit("error-logs"), c.Admin.ReportError)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		me := authenticated.Group("/me")
		{
			me.GET("", c.User.GetMe)
			me.PUT("", c.User.UpdateMe)
			me.POST("/avatar", c.User.UploadAvatar)
			me.GET("/2fa", c.Auth.TwoFactorStatus)
			me.POST("/2fa/setup", c.Auth.TwoFactorSetup)
			me.POST("/2fa/enable", c.Auth.TwoFactorEnable)
			me.POST("/2fa/disable", c.Auth.TwoFactorDisable)
			me.GET("/donations", c.Donation.ListMine)
			me.GET("/attendance", c.Event.MyAttendance)
		}

		authenticated.GET("/profiles", c.User.Directory)

		posts := authenticated.Group("/posts")
		{
			posts.GET("", c.Feed.ListPosts)
			posts.GET("/:id", c.Feed.GetPost)
			posts.PUT("/:id", c.Feed.UpdatePost)
			posts.DELETE("/:id", c.Feed.DeletePost)
			posts.GET("/:id/comments", c.Feed.ListComments)

			postsMember := posts.Group("")
			postsMember.Use(authMiddleware.RoleAtLeast(models.RoleMember))
			{
				postsMember.POST("", c.Feed.CreatePost)
				postsMember.POST("/:id/image", c.Feed.UploadPostImage)
				postsMember.POST("/:id/like", c.Feed.ToggleLike)
				postsMember.POST("/:id/comments", c.Feed.AddComment)
			}
		}
		authenticated.DELETE("/comments/:id", c.Feed.DeleteComment)

		events := authenticated.Group("/events")
		{
			eventsMember := events.Group("")
			eventsMember.Use(authMiddleware.RoleAtLeast(models.RoleMember))
			{
				eventsMember.PUT("/:id/rsvp", c.Event.SetRSVP)
				eventsMember.DELETE("/:id/rsvp", c.Event.DeleteRSVP)
			}

			eventsAdmin := events.Group("")
			eventsAdmin.Use(authMiddleware.RoleAtLeast(models.RoleAdmin))
			{
				eventsAdmin.POST("", c.Event.CreateEvent)
				eventsAdmin.PUT("/:id", c.Event.UpdateEvent)
				eventsAdmin.DELETE("/:id", c.Event.DeleteEvent)
				eventsAdmin.GET("/:id/rsvps", c.Event.ListRSVPs)
			}
		}

		announcements := authenticated.Group("/announcements")
		announcements.Use(authMiddleware.RoleAtLeast(models.RoleAdmin))
		{
			announcements.POST("", c.Feed.CreateAnnouncement)
			announcements.PUT("/:id", c.Feed.UpdateAnnouncement)
			announcements.DELETE("/:id", c.Feed.DeleteAnnouncement)
		}

		campaigns := authenticated.Group("/campaigns")
		{
			campaigns.POST("/:id/donations", c.Donation.Donate)

			campaignsAdmin := campaigns.Group("")
			campaignsAdmin.Use(authMiddleware.RoleAtLeast(models.RoleAdmin))
			{
				campaignsAdmin.POST("", c.Donation.CreateCampaign)
				campaignsAdmin.PUT("/:id", c.Donation.UpdateCampaign)
				campaignsAdmin.DELETE("/:id", c.Donation.DeleteCampaign)
			}
		}
		authenticated.POST("/donations/:id/verify", c.Donation.VerifyPayment)

		tasks := authenticated.Group("/tasks")
		{
			tasks.GET("/mine", c.Task.ListMine)
			tasks.PUT("/:id/status", c.Task.UpdateStatus)
		}

		chat := authenticated.Group("/chat")
		{
			chat.POST("/rooms", c.Chat.CreateRoom)
			chat.GET("/rooms", c.Chat.ListRooms)
			chat.GET("/rooms/:id", c.Chat.GetRoom)
			chat.PUT("/rooms/:id", c.Chat.RenameRoom)
			chat.GET("/rooms/:id/participants", c.Chat.ListParticipants)
			chat.POST("/rooms/:id/participants", c.Chat.AddParticipants)
			chat.DELETE("/rooms/:id/participants/:userId", c.Chat.RemoveParticipant)
			chat.GET("/rooms/:id/messages", c.Chat.ListMessages)
			chat.POST("/rooms/:id/messages", c.Chat.SendMessage)
			chat.GET("/rooms/:id/pinned", c.Chat.ListPinned)
			chat.POST("/rooms/:id/read", c.Chat.MarkRead)
			chat.POST("/direct/:userId", c.Chat.OpenDirect)
			chat.PUT("/messages/:id", c.Chat.EditMessage)
			chat.DELETE("/messages/:id", c.Chat.DeleteMessage)
			chat.POST("/messages/:id/reactions", c.Chat.ToggleReaction)
			chat.POST("/messages/:id/pin", c.Chat.PinMessage)
			chat.DELETE("/messages/:id/pin", c.Chat.UnpinMessage)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.List)
			notifications.GET("/unread-count", c.Notification.UnreadCount)
			notifications.POST("/read-all", c.Notification.MarkAllRead)
			notifications.POST("/:id/read", c.Notification.MarkRead)
			notifications.DELETE("/:id", c.Notification.Delete)
		}

		popups := authenticated.Group("/popups")
		{
			popups.GET("/active", c.Engagement.ActivePopups)
			popups.POST("/:id/view", c.Engagement.RecordPopupView)
		}

		studio := authenticated.Group("/studio")
		studio.Use(authMiddleware.RoleAtLeast(models.RoleMember))
		{
			studio.POST("/images", rateLimiter.Limit("studio"), c.Studio.GenerateImage)
			studio.GET("/usage", c.Studio.Usage)
		}

		// --- Admin routes; super admin only rules are enforced by the services ---
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleAtLeast(models.RoleAdmin))
		{
			admin.GET("/users", c.User.ListUsers)
			admin.PUT("/users/:id/role", c.User.SetRole)
			admin.PUT("/users/:id/status", c.User.SetStatus)

			admin.POST("/badges", c.User.GrantBadge)
			admin.DELETE("/badges/:userId/:badgeType", c.User.RevokeBadge)
			admin.POST("/achievements", c.User.AwardAchievement)
			admin.DELETE("/achievements/:id", c.User.DeleteAchievement)

			admin.GET("/posts", c.Feed.ListPosts)
			admin.POST("/posts/moderate", c.Feed.Moderate)
			admin.DELETE("/comments/:id", c.Feed.DeleteComment)

			admin.PUT("/events/:id/attendance", c.Event.RecordAttendance)
			admin.GET("/events/:id/attendance", c.Event.ListAttendance)

			admin.POST("/tasks", c.Task.CreateTask)
			admin.GET("/tasks", c.Task.ListTasks)
			admin.DELETE("/tasks/:id", c.Task.DeleteTask)

			admin.GET("/popups", c.Engagement.ListPopups)
			admin.GET("/popups/:id", c.Engagement.GetPopup)
			admin.POST("/popups", c.Engagement.CreatePopup)
			admin.PUT("/popups/:id", c.Engagement.UpdatePopup)
			admin.DELETE("/popups/:id", c.Engagement.DeletePopup)

			admin.GET("/slideshows", c.Engagement.ListSlides)
			admin.POST("/slideshows", c.Engagement.CreateSlide)
			admin.PUT("/slideshows/:id", c.Engagement.UpdateSlide)
			admin.POST("/slideshows/:id/image", c.Engagement.UploadSlideImage)
			admin.DELETE("/slideshows/:id", c.Engagement.DeleteSlide)

			admin.GET("/donations", c.Donation.ListDonations)
			admin.GET("/ai-usage", c.Studio.ListUsage)

			admin.GET("/faq", c.Studio.ListAllFAQ)
			admin.POST("/faq", c.Studio.CreateFAQ)
			admin.PUT("/faq/:id", c.Studio.UpdateFAQ)
			admin.DELETE("/faq/:id", c.Studio.DeleteFAQ)

			admin.GET("/error-logs", c.Admin.ListErrorLogs)
			admin.DELETE("/error-logs", c.Admin.PurgeErrorLogs)
			admin.GET("/analytics", c.Admin.Analytics)
		}
	}
}
