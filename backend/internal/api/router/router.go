package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/config"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/api/handler"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/api/middleware"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/jwt"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/redis"
)

// 认证接口限流：每个 IP 每分钟 20 次
const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
		}
		c.JSON(code, status)
	})

	// rdb 为 nil 时不做黑名单检查
	var tokens middleware.TokenChecker
	if rdb != nil {
		tokens = rdb
	}

	const (
		resident   = model.RoleResident
		clerk      = model.RoleClerk
		supervisor = model.RoleSupervisor
		admin      = model.RoleAdministrator
		support    = model.RoleSupport
		mayor      = model.RoleMayor
	)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, authRateLimit, authRateWindow))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, tokens))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/users/support", middleware.RoleAuth(supervisor, admin), h.Auth.ListSupportPersons)

			// 投诉模块（可见范围由 Service 层按角色过滤）
			complaints := authorized.Group("/complaints")
			{
				complaints.POST("", middleware.RoleAuth(resident, clerk), h.Complaint.Create)
				complaints.GET("", middleware.RoleAuth(resident, clerk, supervisor, admin), h.Complaint.List)
				complaints.GET("/:id", h.Complaint.Get)
				complaints.PUT("/:id", h.Complaint.Update)
				complaints.DELETE("/:id", middleware.RoleAuth(admin, supervisor), h.Complaint.Delete)
				complaints.GET("/:id/activities", h.Complaint.ListActivities)
				complaints.PUT("/:id/assess", middleware.RoleAuth(supervisor), h.Complaint.Assess)
				complaints.PUT("/:id/approve-resources", middleware.RoleAuth(admin), h.Complaint.ApproveResources)
				complaints.PUT("/:id/reject-resources", middleware.RoleAuth(admin), h.Complaint.RejectResources)
				complaints.PUT("/:id/schedule", middleware.RoleAuth(supervisor), h.Complaint.Schedule)
				complaints.PUT("/:id/confirm-completion", middleware.RoleAuth(supervisor), h.Complaint.ConfirmCompletion)
			}

			// 维修工单模块
			work := authorized.Group("/work-assignments")
			{
				work.GET("/my", middleware.RoleAuth(support), h.WorkAssignment.ListMine)
				work.GET("/supervisor", middleware.RoleAuth(supervisor), h.WorkAssignment.ListBySupervisor)
				work.GET("/calendar.ics", middleware.RoleAuth(support, supervisor), h.WorkAssignment.Calendar)
				work.GET("/:id", h.WorkAssignment.Get)
				work.POST("", middleware.RoleAuth(supervisor), h.WorkAssignment.Create)
				work.PUT("/:id/status", middleware.RoleAuth(support), h.WorkAssignment.UpdateStatus)
				work.PUT("/:id", middleware.RoleAuth(supervisor), h.WorkAssignment.Update)
				work.DELETE("/:id", middleware.RoleAuth(supervisor), h.WorkAssignment.Delete)
			}

			// 施工排期模块
			schedules := authorized.Group("/schedules")
			{
				schedules.POST("/auto-schedule", middleware.RoleAuth(supervisor, admin), h.Schedule.AutoSchedule)
				schedules.GET("", h.Schedule.List)
				schedules.GET("/:id", h.Schedule.Get)
				schedules.POST("", middleware.RoleAuth(supervisor), h.Schedule.Create)
				schedules.PUT("/:id", middleware.RoleAuth(supervisor, admin), h.Schedule.Update)
				schedules.DELETE("/:id", middleware.RoleAuth(supervisor, admin), h.Schedule.Delete)
			}

			// 资源台账模块
			resources := authorized.Group("/resources")
			{
				resources.GET("", h.Resource.List)
				resources.GET("/summary", h.Resource.Summary)
				resources.GET("/:id", h.Resource.Get)
				resources.POST("", middleware.RoleAuth(admin), h.Resource.Create)
				resources.PUT("/:id", middleware.RoleAuth(admin), h.Resource.Update)
				resources.DELETE("/:id", middleware.RoleAuth(admin), h.Resource.Delete)
			}

			// 统计报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/statistics", middleware.RoleAuth(mayor, admin, supervisor), h.Report.Statistics)
				reports.GET("/area-wise", middleware.RoleAuth(mayor, supervisor), h.Report.AreaWise)
				reports.GET("/resource-utilization", middleware.RoleAuth(mayor, admin), h.Report.ResourceUtilization)
				reports.GET("/trends", middleware.RoleAuth(mayor), h.Report.MonthlyTrends)
				reports.GET("/export", middleware.RoleAuth(mayor, admin, supervisor), h.Report.ExportComplaints)
			}
		}
	}

	return r
}
