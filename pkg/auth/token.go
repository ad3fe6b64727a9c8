package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"social_quests_api/internal/model"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userContextKey = "current_user"

// UserProvider resolves a token's encoded user id to a live user record.
type UserProvider interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type TokenAuth struct {
	secret   []byte
	tokenTTL time.Duration
	users    UserProvider
}

func NewTokenAuth(secret string, tokenTTL time.Duration, users UserProvider) *TokenAuth {
	return &TokenAuth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		users:    users,
	}
}

// IssueToken signs a bearer token carrying the user id and an expiry.
func (t *TokenAuth) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(t.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (t *TokenAuth) parseToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id claim missing")
	}

	return int64(rawID), nil
}

// Middleware is the access gate for every protected route. A missing,
// malformed or expired token is rejected with 401, as is a token whose user
// no longer exists.
func (t *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := t.parseToken(tokenString)
		if err != nil {
			log.Info("invalid bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := t.users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Info("token user no longer resolvable", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by Middleware for this request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
