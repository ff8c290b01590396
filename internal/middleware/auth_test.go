package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": UserRole(c)})
	})
	r.GET("/admin", AuthMiddleware(secret), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	valid := sign(t, jwt.MapClaims{"sub": "th-1", "role": RoleTherapist}, secret)

	w := do(r, "/me", valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"th-1","role":"therapist"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.MapClaims{"sub": "th-1", "role": RoleTherapist}, "other")).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.MapClaims{"sub": "th-1", "role": "root"}, secret)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", sign(t, jwt.MapClaims{"role": RoleAdmin}, secret)).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", sign(t, jwt.MapClaims{"sub": "c-1", "role": RoleClient}, secret)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", sign(t, jwt.MapClaims{"sub": "a-1", "role": RoleAdmin}, secret)).Code)
}
