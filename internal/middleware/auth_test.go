package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistenfrota/auth-service/internal/config"
	"github.com/sistenfrota/auth-service/internal/middleware"
	"github.com/sistenfrota/auth-service/internal/models"
	"github.com/sistenfrota/auth-service/internal/services"
)

type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (r *stubUserRepo) GetByEmailAndResetToken(email, token string, now time.Time) (*models.User, error) {
	return nil, nil
}
func (r *stubUserRepo) GetByEmailAndVerificationToken(email, token string, now time.Time) (*models.User, error) {
	return nil, nil
}
func (r *stubUserRepo) Create(user *models.User) error              { return nil }
func (r *stubUserRepo) Update(user *models.User) error              { return nil }
func (r *stubUserRepo) IncrementTokenVersion(id uuid.UUID) error    { return nil }
func (r *stubUserRepo) GetAll(limit, offset int) ([]models.User, int64, error) {
	return nil, 0, nil
}
func (r *stubUserRepo) ExistsByEmail(email string) (bool, error) { return false, nil }

type middlewareFixture struct {
	router     *gin.Engine
	tokens     *services.TokenService
	revocation services.RevocationStore
	repo       *stubUserRepo
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := services.NewTokenService(&config.JWTConfig{
		AccessSecret:          "access-secret-for-tests",
		RefreshSecret:         "refresh-secret-for-tests",
		AccessTokenExpiry:     "1h",
		RefreshTokenExpiry:    "7d",
		RememberMeTokenExpiry: "30d",
	})
	require.NoError(t, err)

	repo := &stubUserRepo{}
	revocation := services.NewMemoryRevocationStore()

	router := gin.New()
	protected := router.Group("/", middleware.AuthMiddleware(tokens, revocation, repo))
	protected.GET("/protected", func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})

	admin := protected.Group("/", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &middlewareFixture{router: router, tokens: tokens, revocation: revocation, repo: repo}
}

func (f *middlewareFixture) seedUser(role models.UserRole) *models.User {
	user := &models.User{
		ID:     uuid.New(),
		Name:   "Alice",
		Email:  "alice@example.com",
		Role:   role,
		Active: true,
	}
	f.repo.user = user
	return user
}

func (f *middlewareFixture) request(t *testing.T, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	f := newMiddlewareFixture(t)

	rec := f.request(t, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token not provided"}`, rec.Body.String())
}

func TestAuthMiddleware_BadScheme(t *testing.T) {
	f := newMiddlewareFixture(t)

	rec := f.request(t, "/protected", "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"malformed token"}`, rec.Body.String())
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	f := newMiddlewareFixture(t)

	rec := f.request(t, "/protected", "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token invalid"}`, rec.Body.String())
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleUser)

	token, err := f.tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NoError(t, f.revocation.Revoke(token, time.Now().Add(time.Hour)))

	rec := f.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token revoked"}`, rec.Body.String())
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expiring, err := services.NewTokenService(&config.JWTConfig{
		AccessSecret:          "access-secret-for-tests",
		RefreshSecret:         "refresh-secret-for-tests",
		AccessTokenExpiry:     "1ms",
		RefreshTokenExpiry:    "1ms",
		RememberMeTokenExpiry: "1ms",
	})
	require.NoError(t, err)

	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleUser)

	token, err := expiring.GenerateAccessToken(user)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	rec := f.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token expired"}`, rec.Body.String())
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	f := newMiddlewareFixture(t)

	ghost := &models.User{ID: uuid.New(), Email: "ghost@example.com", Role: models.RoleUser, Active: true}
	token, err := f.tokens.GenerateAccessToken(ghost)
	require.NoError(t, err)

	rec := f.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleUser)
	user.Active = false

	token, err := f.tokens.GenerateAccessToken(user)
	require.NoError(t, err)

	rec := f.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"account is inactive"}`, rec.Body.String())
}

func TestAuthMiddleware_Success(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleUser)

	token, err := f.tokens.GenerateAccessToken(user)
	require.NoError(t, err)

	rec := f.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"alice@example.com"}`, rec.Body.String())
}

func TestRequireRole_DeniesWrongRole(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleUser)

	token, err := f.tokens.GenerateAccessToken(user)
	require.NoError(t, err)

	rec := f.request(t, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"access denied"}`, rec.Body.String())
}

func TestRequireRole_AdmitsAdmin(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := f.seedUser(models.RoleAdmin)

	token, err := f.tokens.GenerateAccessToken(user)
	require.NoError(t, err)

	rec := f.request(t, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
