package app

import (
	"campus_portal_backend/docs"
	"campus_portal_backend/internal/config"
	"campus_portal_backend/internal/middleware"
	"campus_portal_backend/internal/model"
	"campus_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 论坛模块
	a.registerForumRoutes(router, c, cfg)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/session", c.auth.RestoreSession)
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/dashboard", c.dashboard.GetDashboard)

		a.registerGroupRoutes(authGroup, c)
		a.registerSettingsRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerForumRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	forum := router.Group("/api/forum")
	{
		// 浏览类：可选认证，游客可访问
		forum.GET("/questions", middleware.TryAuthMiddleware(cfg), c.forum.SearchQuestions)
		forum.GET("/questions/:id", middleware.TryAuthMiddleware(cfg), c.forum.GetQuestion)
		forum.GET("/tags/popular", c.forum.GetPopularTags)

		// 交互类：强制认证
		authorized := forum.Group("/")
		authorized.Use(middleware.AuthMiddleware(cfg))
		{
			authorized.POST("/questions", c.forum.CreateQuestion)
			authorized.POST("/questions/:id/answers", c.forum.CreateAnswer)
			authorized.POST("/questions/:id/best-answer", c.forum.SelectBestAnswer)
			authorized.POST("/questions/:id/flag", c.forum.FlagQuestion)
			authorized.POST("/questions/:id/close", c.forum.CloseQuestion)

			authorized.POST("/:type/:id/vote", c.forum.CastVote)
			authorized.DELETE("/:type/:id/vote", c.forum.RemoveVote)
			authorized.GET("/:type/:id/vote", c.forum.GetMyVote)

			authorized.GET("/moderation/flagged", middleware.RoleMiddleware(model.Teacher), c.forum.ListFlagged)
		}
	}
}

func (a *App) registerGroupRoutes(rg *gin.RouterGroup, c *controllers) {
	groups := rg.Group("/groups")
	{
		groups.GET("", c.group.SearchGroups)
		groups.POST("", c.group.CreateGroup)
		groups.GET("/mine", c.group.ListMyGroups)
		groups.GET("/:id", c.group.GetGroup)
		groups.POST("/:id/join", c.group.JoinGroup)
		groups.POST("/:id/leave", c.group.LeaveGroup)

		// 成员管理
		groups.POST("/:id/members", c.group.AddMember)
		groups.PUT("/:id/members/:userId", c.group.UpdateMemberRole)
		groups.DELETE("/:id/members/:userId", c.group.RemoveMember)

		// 任务
		groups.GET("/:id/tasks", c.group.ListTasks)
		groups.POST("/:id/tasks", c.group.CreateTask)
		groups.PATCH("/:id/tasks/:taskId/status", c.group.UpdateTaskStatus)
		groups.PUT("/:id/tasks/:taskId/assignee", c.group.AssignTask)

		// 文件与讨论
		groups.GET("/:id/files", c.group.ListFiles)
		groups.POST("/:id/files", c.group.UploadFile)
		groups.GET("/:id/discussions", c.group.ListDiscussions)
		groups.POST("/:id/discussions", c.group.PostDiscussion)
	}
}

func (a *App) registerSettingsRoutes(rg *gin.RouterGroup, c *controllers) {
	settings := rg.Group("/settings")
	{
		settings.GET("", c.settings.GetSettings)
		settings.PUT("/profile", c.settings.UpdateProfile)
		settings.PUT("/notifications", c.settings.UpdateNotifications)
		settings.PUT("/privacy", c.settings.UpdatePrivacy)
		settings.PUT("/appearance", c.settings.UpdateAppearance)
	}
}
