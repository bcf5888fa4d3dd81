package app

import (
	"cbda_exam_backend/docs"
	"cbda_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/health", c.health.HealthCheck)

	auth := router.Group("/auth")
	{
		auth.POST("/login", c.auth.Login)
		auth.POST("/register", c.auth.Register)
		auth.POST("/change-email", c.auth.ChangeEmail)
	}

	questions := router.Group("/questions")
	{
		questions.POST("/upload/:testType/:testId", c.question.Upload)
		questions.GET("/available", c.question.Available)
		questions.GET("/:testType/:testId", c.question.Fetch)
	}

	results := router.Group("/results")
	{
		results.POST("", c.result.Submit)
		results.GET("/user/:userId", c.result.ByUser)
		results.GET("/admin/all", c.result.AdminAll)
		results.GET("/export/csv", c.result.ExportCSV)
		results.GET("/export/csv-cloud", c.result.ExportCSVCloud)
		results.GET("/csv-files", c.result.ListCloudCSVs)
		results.DELETE("/csv-cloud/:filename", c.result.DeleteCloudCSV)
		results.DELETE("/:resultId", c.result.Delete)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/upload-logo", c.admin.UploadLogo)
		admin.GET("/users", c.admin.Users)
		admin.GET("/stats", c.admin.Stats)
	}
}
