package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Baaaki/course-hub/internal/middleware"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/testutil"
	"github.com/Baaaki/course-hub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func setupAuthRouter(t *testing.T) (*gin.Engine, *testutil.TestDatabase) {
	gin.SetMode(gin.TestMode)

	testDB := testutil.SetupTestDatabase(t)
	testutil.CleanDatabase(t, testDB.DB)
	userRepo := repository.NewUserRepository(testDB.DB)

	router := gin.New()
	protected := router.Group("/", middleware.AuthMiddleware(testSecret, userRepo))
	protected.GET("/whoami", func(c *gin.Context) {
		actor, ok := middleware.CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"login": actor.Login, "role": actor.Role})
	})
	protected.GET("/admin", middleware.RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, testDB
}

func createUser(t *testing.T, testDB *testutil.TestDatabase, login string, role models.Role) *models.User {
	user, err := testutil.CreateTestUser(login, "Pass123456", role)
	require.NoError(t, err)
	require.NoError(t, testDB.DB.Create(user).Error)
	return user
}

// TestAuthMiddleware_ValidToken tests the happy path with a bearer header
func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	user := createUser(t, testDB, "alice", models.RoleUser)
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

// TestAuthMiddleware_CookieFallback tests the token cookie works without a header
func TestAuthMiddleware_CookieFallback(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	user := createUser(t, testDB, "alice", models.RoleUser)
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAuthMiddleware_MissingToken tests the unauthenticated path
func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAuthMiddleware_InvalidToken tests garbage and expired tokens
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	user := createUser(t, testDB, "alice", models.RoleUser)
	expired, err := utils.GenerateToken(user, testSecret, -time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"not-a-token", expired} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_DeletedUser tests a valid token for a removed account
func TestAuthMiddleware_DeletedUser(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	user := createUser(t, testDB, "alice", models.RoleUser)
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	testDB.DB.Delete(&models.User{}, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account no longer exists")
}

// TestAuthMiddleware_RoleChangeTakesEffect tests the fresh-load of the actor:
// a demotion applies on the next request even with an old token
func TestAuthMiddleware_RoleChangeTakesEffect(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	user := createUser(t, testDB, "alice", models.RoleAdmin)
	token, err := utils.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Demote without reissuing the token
	testDB.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleUser)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestRequireRoles tests the coarse role gate
func TestRequireRoles(t *testing.T) {
	router, testDB := setupAuthRouter(t)
	defer testDB.Teardown(t)

	student := createUser(t, testDB, "student", models.RoleUser)
	token, err := utils.GenerateToken(student, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
