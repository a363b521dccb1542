package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/codelenshq/codelens/pkg/config"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthRequired(), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String()})
	})
	return router
}

func TestAuthRequired(t *testing.T) {
	config.Load()
	router := setupRouter()

	t.Run("Valid token passes", func(t *testing.T) {
		userID := uuid.New()
		token, err := IssueToken(userID, "user@example.com")
		assert.NoError(t, err)

		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("Missing header is rejected", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed token is rejected", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Tampered payload is rejected", func(t *testing.T) {
		token, err := IssueToken(uuid.New(), "user@example.com")
		assert.NoError(t, err)

		parts := strings.SplitN(token, ".", 2)
		tampered := parts[0] + "." + parts[1] + "x"

		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tampered)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong scheme is rejected", func(t *testing.T) {
		token, _ := IssueToken(uuid.New(), "user@example.com")

		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	config.Load()

	userID := uuid.New()
	token, err := IssueToken(userID, "user@example.com")
	assert.NoError(t, err)

	tokenData := parseToken(token)
	assert.NotNil(t, tokenData)
	assert.Equal(t, userID.String(), tokenData.UserID)
	assert.Equal(t, "user@example.com", tokenData.Email)
}
