package api

import (
	"net/http"

	"social_quests_api/internal/model"
	"social_quests_api/internal/service"

	"github.com/gin-gonic/gin"
)

type leaderboardRoutes struct {
	us service.UserServiceI
}

// NewLeaderboardRoutes registers the public leaderboard read. No token is
// required; storage failures surface as an empty board.
func NewLeaderboardRoutes(router *gin.Engine, us service.UserServiceI) {
	h := &leaderboardRoutes{us: us}
	router.GET("/leaderboard", h.GetLeaderboard)
}

type leaderboardEntry struct {
	Username      string `json:"username,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	XPTotal       int    `json:"xp_total"`
}

func leaderboardResponse(users []*model.User) []leaderboardEntry {
	entries := make([]leaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = leaderboardEntry{
			Username:      user.Username,
			WalletAddress: user.WalletAddress,
			XPTotal:       user.XPTotal,
		}
	}
	return entries
}

func (h *leaderboardRoutes) GetLeaderboard(c *gin.Context) {
	users, err := h.us.GetLeaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, []leaderboardEntry{})
		return
	}

	c.JSON(http.StatusOK, leaderboardResponse(users))
}
