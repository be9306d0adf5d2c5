package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"profile-editor/config"
	"profile-editor/controllers"
	"profile-editor/handler"
	"profile-editor/middleware"
)

// SetupRoutes registers every endpoint. uploads serves stored photos under
// /uploads and is nil when photos live in a remote asset store.
func SetupRoutes(router *gin.Engine, cfg *config.Config, profileCtrl *controllers.ProfileController, uploads gin.HandlerFunc) {
	router.GET("/", gin.WrapF(handler.Handler))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	profile := router.Group("/profile/screen")
	profile.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		profile.POST("", profileCtrl.MountScreen)
		profile.GET("", profileCtrl.GetScreen)
		profile.DELETE("", profileCtrl.UnmountScreen)

		profile.POST("/edit", profileCtrl.BeginEdit)
		profile.PATCH("/edit", profileCtrl.UpdateDraft)
		profile.DELETE("/edit", profileCtrl.CancelEdit)
		profile.POST("/edit/commit", profileCtrl.CommitEdit)

		profile.POST("/photo", profileCtrl.UploadPhoto)
		profile.DELETE("/photo", profileCtrl.DeletePhoto)
	}

	if uploads != nil {
		router.GET("/uploads/:name", uploads)
		router.HEAD("/uploads/:name", uploads)
	}
}
