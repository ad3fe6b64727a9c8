package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social_quests_api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubUserProvider struct {
	users map[int64]*model.User
}

func (s *stubUserProvider) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, assert.AnError
	}
	return user, nil
}

func newGateRouter(t *TokenAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", t.Middleware(), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return router
}

func TestTokenAuth_Middleware(t *testing.T) {
	users := &stubUserProvider{users: map[int64]*model.User{
		42: {ID: 42, Username: "alice", XPTotal: 10},
	}}

	tokenAuth := NewTokenAuth("test-secret", time.Hour, users)
	router := newGateRouter(tokenAuth)

	validToken, err := tokenAuth.IssueToken(42)
	assert.NoError(t, err)

	otherSecret := NewTokenAuth("other-secret", time.Hour, users)
	foreignToken, err := otherSecret.IssueToken(42)
	assert.NoError(t, err)

	expiredAuth := NewTokenAuth("test-secret", -time.Minute, users)
	expiredToken, err := expiredAuth.IssueToken(42)
	assert.NoError(t, err)

	deletedUserToken, err := tokenAuth.IssueToken(99)
	assert.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "Valid token resolves the user",
			header:         "Bearer " + validToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong prefix",
			header:         "Token " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage token",
			header:         "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong signing secret",
			header:         "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired token",
			header:         "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token user no longer exists",
			header:         "Bearer " + deletedUserToken,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestTokenAuth_IssueToken_RoundTrip(t *testing.T) {
	tokenAuth := NewTokenAuth("test-secret", time.Hour, nil)

	token, err := tokenAuth.IssueToken(7)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := tokenAuth.parseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}
