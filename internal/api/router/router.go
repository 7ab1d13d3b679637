package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eco-award/backend/config"
	"eco-award/backend/internal/api/handler"
	"eco-award/backend/internal/api/middleware"
	"eco-award/backend/internal/model"
	"eco-award/backend/pkg/jwt"
	"eco-award/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB：材料文件走对象存储，接口只收元数据

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，带限流防爆破）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/profile", h.Auth.Profile)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 学校模块
			schools := authorized.Group("/schools")
			{
				schools.POST("", middleware.RoleAuth(model.RoleAdmin), h.School.Register)
				schools.GET("", middleware.RoleAuth(model.RoleReviewer, model.RoleAdmin), h.School.List)
				schools.GET("/:id", h.School.Get)
				schools.GET("/:id/counts", h.School.GetCounts)
				schools.POST("/:id/rounds", h.School.StartNewRound)
				schools.GET("/:id/certificates", h.School.ListCertificates)
				schools.GET("/:id/evidence", h.Evidence.ListBySchool)
				schools.GET("/:id/evidence/export", h.Export.ExportSchoolEvidence)
				schools.GET("/:id/audit", h.Audit.GetBySchool)
			}

			// 实证材料模块
			evidence := authorized.Group("/evidence")
			{
				evidence.POST("", h.Evidence.Submit)
				evidence.GET("/:id", h.Evidence.Get)
				evidence.PUT("/:id/file", h.Evidence.UpdateFile)
				evidence.POST("/:id/review", middleware.RoleAuth(model.RoleReviewer, model.RoleAdmin), h.Review.ReviewEvidence)
				evidence.POST("/bulk-review", middleware.RoleAuth(model.RoleReviewer, model.RoleAdmin), h.Review.BulkReviewEvidence)
			}

			// 环境审计问卷模块
			audits := authorized.Group("/audits")
			{
				audits.PUT("/draft", h.Audit.SaveDraft)
				audits.POST("/submit", h.Audit.Submit)
				audits.POST("/:id/review", middleware.RoleAuth(model.RoleReviewer, model.RoleAdmin), h.Review.ReviewAudit)
			}

			// 站内通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return r
}
