package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sistenfrota/auth-service/internal/controllers"
)

func RegisterAuthRoutes(
	router *gin.RouterGroup,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	authMiddleware gin.HandlerFunc,
	adminMiddleware gin.HandlerFunc,
) {
	// Public auth endpoints
	router.POST("/register", authController.Register)
	router.POST("/login", authController.Login)
	router.POST("/verify-email", authController.VerifyEmail)
	router.POST("/forgot-password", authController.ForgotPassword)
	router.POST("/reset-password", authController.ResetPassword)
	router.POST("/refresh-token", authController.RefreshToken)

	// Protected endpoints (require valid access token)
	protected := router.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/logout-all", authController.LogoutAll)
		protected.GET("/me", userController.Me)

		// Admin-only endpoints
		admin := protected.Group("")
		admin.Use(adminMiddleware)
		{
			admin.GET("/users", userController.ListUsers)
		}
	}
}
