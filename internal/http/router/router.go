package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/config"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/middleware"
)

// Handlers собирает все хэндлеры API.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Task         *handlers.TaskHandler
	Chat         *handlers.ChatHandler
	Wallet       *handlers.WalletHandler
	Notification *handlers.NotificationHandler
	Leaderboard  *handlers.LeaderboardHandler
	Profile      *handlers.ProfileHandler
	Health       *handlers.HealthHandler
	WS           *handlers.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media/avatars", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	// Публичные маршруты
	api.GET("/tasks", h.Task.ListTasks)
	api.GET("/tasks/:id", middleware.UUIDValidator("id"), h.Task.GetTask)
	api.GET("/users/:id", middleware.UUIDValidator("id"), h.Profile.GetUser)
	api.GET("/leaderboard", h.Leaderboard.GetLeaderboard)
	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)
		protected.POST("/profile/avatar", h.Profile.UploadAvatar)

		protected.POST("/tasks", h.Task.CreateTask)
		protected.GET("/tasks/:id/messages", middleware.UUIDValidator("id"), h.Chat.ListMessages)
		protected.POST("/tasks/:id/messages", middleware.UUIDValidator("id"), h.Chat.SendMessage)

		protected.GET("/wallet", h.Wallet.GetWallet)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
	}

	// Операции с деньгами и переходы состояний дополнительно ограничены по частоте.
	mutations := api.Group("/")
	mutations.Use(middleware.AuthMiddleware(tokens), middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		mutations.POST("/tasks/:id/accept", middleware.UUIDValidator("id"), h.Task.AcceptTask)
		mutations.POST("/tasks/:id/request-payment", middleware.UUIDValidator("id"), h.Task.RequestPayment)
		mutations.POST("/tasks/:id/release-payment", middleware.UUIDValidator("id"), h.Task.ReleasePayment)
		mutations.POST("/tasks/:id/cancel", middleware.UUIDValidator("id"), h.Task.CancelTask)
		mutations.POST("/wallet/deposit", h.Wallet.Deposit)
		mutations.POST("/wallet/withdraw", h.Wallet.Withdraw)
	}

	return r
}
