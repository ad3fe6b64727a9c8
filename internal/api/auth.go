package api

import (
	"errors"
	"net/http"

	"social_quests_api/internal/service"
	"social_quests_api/pkg/auth"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// Identity schemes. Exactly one is active per deployment.
const (
	SchemeCredentials = "credentials"
	SchemeWallet      = "wallet"
)

type authRoutes struct {
	as   service.AuthServiceI
	gate *auth.TokenAuth
}

// NewAuthRoutes registers the identity endpoints for the configured scheme.
// The two schemes are mutually exclusive; the other scheme's routes do not
// exist in the deployment.
func NewAuthRoutes(handler *gin.RouterGroup, as service.AuthServiceI, gate *auth.TokenAuth, scheme string) {
	h := &authRoutes{as: as, gate: gate}

	g := handler.Group("/auth")
	switch scheme {
	case SchemeWallet:
		g.POST("/wallet", h.AuthenticateByWallet)
	default:
		g.POST("/register", h.Register)
		g.POST("/login", h.Login)
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *authRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.as.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.as.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error("failed to log in user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	token, err := h.gate.IssueToken(user.ID)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type WalletAuthRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

func (h *authRoutes) AuthenticateByWallet(c *gin.Context) {
	log := logger.Logger()

	var req WalletAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.as.AuthenticateByWallet(c.Request.Context(), req.WalletAddress)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWalletAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
			return
		}
		log.Error("failed to authenticate wallet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	token, err := h.gate.IssueToken(user.ID)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
