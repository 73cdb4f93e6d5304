package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diamondnova-backend/internal/shared/middleware"
	"diamondnova-backend/internal/shared/response"
	"diamondnova-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupPublicRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupTaskRoutes(v1, c)
		setupGiftcodeRoutes(v1, c)
		setupWithdrawalRoutes(v1, c)
		setupVipRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AccountHandler.Register)
		auth.POST("/login", c.AccountHandler.Login)
		auth.POST("/refresh", c.AccountHandler.RefreshToken)
	}
}

// ========================================
// PUBLIC ROUTES (không cần đăng nhập)
// ========================================
func setupPublicRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/leaderboard", c.AccountHandler.Leaderboard)
	v1.GET("/announcements", c.NotificationHandler.ListAnnouncements)
	v1.GET("/banners", c.NotificationHandler.ListBanners)
	v1.GET("/vip/packages", c.VipHandler.Packages)
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.AccountHandler.GetProfile)
		users.GET("/me/ledger", c.LedgerHandler.GetHistory)
		users.GET("/me/notifications", c.NotificationHandler.ListMine)
		users.GET("/me/notifications/unread-count", c.NotificationHandler.CountUnread)
		users.PUT("/me/notifications/read-all", c.NotificationHandler.MarkAllRead)
		users.PUT("/me/notifications/:id/read", c.NotificationHandler.MarkRead)
	}
}

// ========================================
// TASK ROUTES (vượt link kiếm điểm)
// ========================================
func setupTaskRoutes(v1 *gin.RouterGroup, c *container.Container) {
	tasks := v1.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		tasks.GET("/gates", c.TaskHandler.ListGates)
		tasks.POST("/gates/:name/token", c.TaskHandler.IssueToken)
		tasks.POST("/complete", c.TaskHandler.Complete)
	}
}

// ========================================
// GIFTCODE ROUTES
// ========================================
func setupGiftcodeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	giftcodes := v1.Group("/giftcodes")
	giftcodes.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		giftcodes.POST("/redeem", c.GiftcodeHandler.Redeem)
	}
}

// ========================================
// WITHDRAWAL ROUTES
// ========================================
func setupWithdrawalRoutes(v1 *gin.RouterGroup, c *container.Container) {
	withdrawals := v1.Group("/withdrawals")
	withdrawals.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		withdrawals.POST("", c.WithdrawalHandler.Create)
		withdrawals.GET("", c.WithdrawalHandler.ListMine)
	}
}

// ========================================
// VIP ROUTES
// ========================================
func setupVipRoutes(v1 *gin.RouterGroup, c *container.Container) {
	vip := v1.Group("/vip")
	vip.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		vip.POST("/purchase", c.VipHandler.Purchase)
		vip.POST("/deposits", c.VipHandler.CreateDeposit)
		vip.GET("/deposits", c.VipHandler.ListMyDeposits)
		vip.POST("/deposits/:id/bill", c.VipHandler.UploadBill)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		// Users
		admin.GET("/users", c.AccountHandler.ListAccounts)
		admin.PUT("/users/:id/ban", c.AccountHandler.SetBanned)
		admin.PUT("/users/:id/security-score", c.AccountHandler.SetSecurityScore)
		admin.POST("/users/:id/balance", c.LedgerHandler.AdminAdjust)
		admin.GET("/users/:id/ledger", c.LedgerHandler.AdminGetHistory)

		// Withdrawals
		admin.GET("/withdrawals", c.WithdrawalHandler.List)
		admin.GET("/withdrawals/export.xlsx", c.WithdrawalHandler.Export)
		admin.PUT("/withdrawals/:id/approve", c.WithdrawalHandler.Approve)
		admin.PUT("/withdrawals/:id/reject", c.WithdrawalHandler.Reject)

		// VIP deposits
		admin.GET("/vip/deposits", c.VipHandler.ListDeposits)
		admin.PUT("/vip/deposits/:id/approve", c.VipHandler.ApproveDeposit)
		admin.PUT("/vip/deposits/:id/reject", c.VipHandler.RejectDeposit)

		// Giftcodes
		admin.POST("/giftcodes", c.GiftcodeHandler.Create)
		admin.GET("/giftcodes", c.GiftcodeHandler.List)
		admin.GET("/giftcodes/:code", c.GiftcodeHandler.Get)
		admin.PUT("/giftcodes/:code", c.GiftcodeHandler.Update)
		admin.DELETE("/giftcodes/:code", c.GiftcodeHandler.Deactivate)
		admin.GET("/giftcodes/:code/redemptions", c.GiftcodeHandler.ListRedemptions)

		// Task gates
		admin.GET("/gates", c.TaskHandler.AdminListGates)
		admin.POST("/gates", c.TaskHandler.CreateGate)
		admin.PUT("/gates/:name", c.TaskHandler.UpdateGate)
		admin.PUT("/gates/:name/active", c.TaskHandler.SetGateActive)

		// Announcements + banners
		admin.GET("/announcements", c.NotificationHandler.AdminListAnnouncements)
		admin.POST("/announcements", c.NotificationHandler.CreateAnnouncement)
		admin.PUT("/announcements/:id", c.NotificationHandler.UpdateAnnouncement)
		admin.DELETE("/announcements/:id", c.NotificationHandler.DeleteAnnouncement)
		admin.GET("/banners", c.NotificationHandler.AdminListBanners)
		admin.POST("/banners", c.NotificationHandler.CreateBanner)
		admin.PUT("/banners/:id", c.NotificationHandler.UpdateBanner)
		admin.DELETE("/banners/:id", c.NotificationHandler.DeleteBanner)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable")
			return
		}

		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
		})
	}
}
