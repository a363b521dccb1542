package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codelenshq/codelens/pkg/config"
)

// TokenData is the signed payload carried in a bearer token
type TokenData struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken creates a signed bearer token for a user
func IssueToken(userID uuid.UUID, email string) (string, error) {
	tokenData := TokenData{
		UserID:    userID.String(),
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(config.AppConfig.Auth.TokenTTLHours) * time.Hour),
	}

	data, err := json.Marshal(tokenData)
	if err != nil {
		return "", err
	}

	encodedData := base64.URLEncoding.EncodeToString(data)
	return createSignature(encodedData) + "." + encodedData, nil
}

// parseToken validates a bearer token and returns its payload, or nil
// when the token is malformed, tampered with or expired
func parseToken(token string) *TokenData {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil
	}

	signature, data := parts[0], parts[1]
	if !verifySignature(data, signature) {
		return nil
	}

	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	var tokenData TokenData
	if err := json.Unmarshal(decodedData, &tokenData); err != nil {
		return nil
	}

	if time.Now().After(tokenData.ExpiresAt) {
		return nil
	}

	return &tokenData
}

// AuthRequired rejects requests without a valid bearer token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		tokenData := parseToken(strings.TrimPrefix(header, "Bearer "))
		if tokenData == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(tokenData.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", userID)
		c.Set("user_email", tokenData.Email)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's id from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.Auth.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}
