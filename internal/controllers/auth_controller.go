package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sistenfrota/auth-service/internal/middleware"
	"github.com/sistenfrota/auth-service/internal/models"
	"github.com/sistenfrota/auth-service/internal/services"
)

// forgotPasswordMessage is returned whether or not the email exists, to keep
// the endpoint opaque to account enumeration.
const forgotPasswordMessage = "if an account with this email exists, you will receive recovery instructions"

type AuthController struct {
	authService *services.AuthService
	log         *zap.Logger
}

func NewAuthController(authService *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{authService: authService, log: log}
}

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Role            string `json:"role"`
}

type loginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Token string `json:"token" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := ac.authService.Register(services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            models.UserRole(req.Role),
	})
	if err != nil {
		ac.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         result.User,
		"token":        result.Token,
		"refreshToken": result.RefreshToken,
	})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := ac.authService.Login(services.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		IP:         c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if err != nil {
		ac.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":                  result.User,
		"token":                 result.Token,
		"refreshToken":          result.RefreshToken,
		"expiresIn":             result.ExpiresIn,
		"refreshTokenExpiresIn": result.RefreshTokenExpiresIn,
	})
}

// POST /api/auth/verify-email
func (ac *AuthController) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := ac.authService.VerifyEmail(req.Email, req.Token); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified successfully"})
}

// POST /api/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := ac.authService.ForgotPassword(req.Email); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := ac.authService.ResetPassword(req.Email, req.Token, req.Password); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated successfully"})
}

// POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pair, err := ac.authService.Refresh(req.RefreshToken)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
	})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	token := c.GetString(middleware.ContextTokenKey)

	if err := ac.authService.Logout(user, token); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// POST /api/auth/logout-all
func (ac *AuthController) LogoutAll(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := ac.authService.LogoutAll(user); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all sessions invalidated"})
}

// respondError maps service errors onto the documented status codes. Anything
// unrecognized is logged with request context and reported generically.
func (ac *AuthController) respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		body := gin.H{"error": validationErr.Message}
		if len(validationErr.Details) > 0 {
			body["details"] = validationErr.Details
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var tooMany *services.TooManyAttemptsError
	if errors.As(err, &tooMany) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": tooMany.Error()})
		return
	}
	var locked *services.AccountLockedError
	if errors.As(err, &locked) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": locked.Error()})
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, services.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveAccount),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenMalformed),
		errors.Is(err, services.ErrTokenRevoked),
		errors.Is(err, services.ErrStaleToken),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		ac.log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindError turns gin binding failures into the shared error body, listing
// each violated field constraint.
func bindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required":
				details = append(details, fe.Field()+" is required")
			case "email":
				details = append(details, fe.Field()+" must be a valid email")
			default:
				details = append(details, fe.Field()+" is invalid")
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": details})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
