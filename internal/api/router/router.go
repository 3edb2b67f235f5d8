package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/api/handler"
	"rapor-paud/backend/internal/api/middleware"
	"rapor-paud/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// 启用编辑者认证时，除登录外的全部 API 都需要 Bearer Token
func Setup(cfg *config.Config, h *handler.Handler, verifier middleware.TokenVerifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		api := v1.Group("")
		if cfg.Auth.Enabled() {
			api.Use(middleware.JWTAuth(verifier))
			api.POST("/auth/logout", h.Auth.Logout)
		}

		// 状态与同步
		api.GET("/state", h.Sync.GetState)
		sync := api.Group("/sync")
		{
			sync.GET("/status", h.Sync.GetStatus)
			sync.POST("/refresh", h.Sync.Refresh)
			sync.GET("/failures", h.Sync.ListFailures)
		}

		// 本地连接配置
		cfgGroup := api.Group("/config")
		{
			cfgGroup.GET("", h.Sync.GetConfig)
			cfgGroup.PUT("/store", h.Sync.SaveStoreConfig)
			cfgGroup.DELETE("/store", h.Sync.ClearStoreConfig)
			cfgGroup.PUT("/narrative", h.Sync.SaveNarrativeConfig)
			cfgGroup.DELETE("/narrative", h.Sync.ClearNarrativeConfig)
		}

		// 班级
		classes := api.Group("/classes")
		{
			classes.POST("", h.Collection.CreateClass)
			classes.PUT("/:id", h.Collection.UpdateClass)
			classes.DELETE("/:id", h.Collection.DeleteClass)
		}

		// 学生
		students := api.Group("/students")
		{
			students.POST("", h.Collection.CreateStudent)
			students.PUT("/:id", h.Collection.UpdateStudent)
			students.DELETE("/:id", h.Collection.DeleteStudent)
		}

		// 学习目标
		tps := api.Group("/tps")
		{
			tps.POST("", h.Collection.CreateTP)
			tps.PUT("/:id", h.Collection.UpdateTP)
			tps.DELETE("/:id", h.Collection.DeleteTP)
		}

		// P5 评价标准
		p5 := api.Group("/p5-criteria")
		{
			p5.POST("", h.Collection.CreateP5Criteria)
			p5.PUT("/:id", h.Collection.UpdateP5Criteria)
			p5.DELETE("/:id", h.Collection.DeleteP5Criteria)
		}

		// 反思
		reflections := api.Group("/reflections")
		{
			reflections.POST("", h.Collection.CreateReflection)
			reflections.PUT("/:id", h.Collection.UpdateReflection)
			reflections.DELETE("/:id", h.Collection.DeleteReflection)
		}

		// 按自然键覆盖
		api.PUT("/assessments", h.Collection.UpsertAssessment)
		api.PUT("/category-results", h.Collection.UpsertCategoryResult)
		api.PUT("/p5-assessments", h.Collection.UpsertP5Assessment)
		api.PUT("/notes", h.Collection.UpsertNote)
		api.PUT("/attendance", h.Collection.UpsertAttendance)

		// 学校设置
		api.GET("/settings", h.Collection.GetSettings)
		api.PUT("/settings", h.Collection.SetSettings)

		// 破坏性操作确认
		confirmations := api.Group("/confirmations")
		{
			confirmations.GET("", h.Confirm.List)
			confirmations.POST("", h.Confirm.Request)
			confirmations.GET("/current", h.Confirm.Current)
			confirmations.POST("/:id/resolve", h.Confirm.Resolve)
		}

		// 叙述生成
		narrative := api.Group("/narrative")
		{
			narrative.POST("/category", h.Narrative.GenerateCategory)
			narrative.POST("/p5", h.Narrative.GenerateP5)
			narrative.POST("/suggest/category", h.Narrative.SuggestCategory)
			narrative.POST("/suggest/p5", h.Narrative.SuggestP5)
		}

		// 报告
		api.GET("/dashboard", h.Report.Dashboard)
		api.GET("/reports/students/:id", h.Report.StudentReport)

		// 导入导出
		api.GET("/export/classes/:id/recap", h.Export.ExportClassRecap)
		api.POST("/import/classes/:id/students", h.Export.ImportRoster)
	}

	return r
}
