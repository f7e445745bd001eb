package router

import (
	"github.com/Filadrif/MPBFQW-backend/internal/auth"
	"github.com/Filadrif/MPBFQW-backend/internal/config"
	"github.com/Filadrif/MPBFQW-backend/internal/handler"
	"github.com/Filadrif/MPBFQW-backend/internal/middleware"
	"github.com/Filadrif/MPBFQW-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, store storage.Store) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	authService := auth.NewService(db, cfg.JWT)

	api := r.Group("/api")

	// endpoints below do not require an access token
	authHandler := handler.NewAuthHandler(db, authService)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/refresh", authHandler.Refresh)

	// everything else sits behind the access verifier
	protected := api.Group("")
	protected.Use(
		middleware.Auth(authService),
		middleware.Audit(db),
	)

	protected.DELETE("/auth/logout", authHandler.Logout)

	accountHandler := handler.NewAccountHandler(db)
	me := protected.Group("", middleware.RequireUser())
	me.GET("/me", accountHandler.GetMe)
	me.PUT("/me", accountHandler.UpdateProfile)
	me.PUT("/me/password", accountHandler.ChangePassword)

	courseHandler := handler.NewCourseHandler(db)
	courses := protected.Group("/courses", middleware.RequireUser())
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)

	teacherCourses := protected.Group("/courses", middleware.RequireTeacher())
	teacherCourses.POST("", courseHandler.Create)
	teacherCourses.PUT("/:id", courseHandler.Update)
	teacherCourses.POST("/:id/publish", courseHandler.Publish)
	teacherCourses.POST("/:id/sections", courseHandler.CreateSection)
	teacherCourses.DELETE("/:id/sections/:sid", courseHandler.DeleteSection)
	teacherCourses.POST("/:id/lessons", courseHandler.CreateLesson)
	teacherCourses.POST("/:id/tasks", courseHandler.CreateTask)

	adminCourses := protected.Group("/courses", middleware.RequireAdmin())
	adminCourses.DELETE("/:id", courseHandler.Delete)

	messageHandler := handler.NewMessageHandler(db, store)
	messages := protected.Group("/courses/:id/messages", middleware.RequireUser())
	messages.GET("", messageHandler.List)
	messages.GET("/:mid", messageHandler.Get)
	messages.GET("/:mid/attachments", messageHandler.ListAttachments)
	messages.GET("/:mid/attachments/:aid/download", messageHandler.DownloadAttachment)

	teacherMessages := protected.Group("/courses/:id/messages", middleware.RequireTeacher())
	teacherMessages.POST("", messageHandler.Create)
	teacherMessages.PUT("/:mid", messageHandler.Update)
	teacherMessages.DELETE("/:mid", messageHandler.Delete)
	teacherMessages.POST("/:mid/attachments", messageHandler.UploadAttachment)
	teacherMessages.DELETE("/:mid/attachments/:aid", messageHandler.DeleteAttachment)

	studentHandler := handler.NewStudentHandler(db)
	student := protected.Group("", middleware.RequireUser())
	student.POST("/courses/:id/register", studentHandler.Register)
	student.GET("/my/courses", studentHandler.MyCourses)
	student.GET("/my/courses/recent", studentHandler.RecentCourses)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/courses/:id/progress/export",
		middleware.RequireTeacher(), exportHandler.ExportProgress)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/audit", accountHandler.ListAudit)

	return r
}
