package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, secret string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(secret))
	handler := func(c *gin.Context) {
		userID, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"user": userID})
	}
	r.GET("/", handler)
	r.GET("/health", handler)
	r.GET("/history/:user_id", handler)
	r.GET("/ws/:user_id", handler)
	return r
}

func TestJWTAuth_DisabledWithoutSecret(t *testing.T) {
	r := newAuthRouter("")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/alice", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRouter(testSecret)
	valid := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "alice",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"public root", "/", "", http.StatusOK},
		{"public health", "/health", "", http.StatusOK},
		{"missing token", "/history/alice", "", http.StatusUnauthorized},
		{"bearer token", "/history/alice", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "/history/alice", "bearer " + valid, http.StatusOK},
		{"query token", "/ws/alice?token=" + valid, "", http.StatusOK},
		{"wrong secret", "/history/alice", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "alice"}, "other"), http.StatusUnauthorized},
		{"wrong algorithm", "/history/alice", "Bearer " + signToken(t, jwt.SigningMethodHS512, jwt.MapClaims{"user_id": "alice"}, testSecret), http.StatusUnauthorized},
		{"expired", "/history/alice", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "alice",
			"exp":     time.Now().Add(-time.Minute).Unix(),
		}, testSecret), http.StatusUnauthorized},
		{"no user claim", "/history/alice", "Bearer " + signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}, testSecret), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"detail"`)
			}
		})
	}
}

func TestJWTAuth_SetsUserID(t *testing.T) {
	r := newAuthRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/history/someone-else", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "alice"}, testSecret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"alice"}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
}
