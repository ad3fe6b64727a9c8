package api

import (
	"net/http"
	"time"

	"social_quests_api/internal/service"
	"social_quests_api/pkg/auth"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type progressRoutes struct {
	ps service.ProgressServiceI
}

func NewProgressRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, gate *auth.TokenAuth) {
	h := &progressRoutes{ps: ps}

	user := handler.Group("/user")
	user.Use(gate.Middleware())
	{
		user.GET("/progress", h.GetUserProgress)
	}
}

type progressEntryResponse struct {
	QuestID     string     `json:"quest_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (h *progressRoutes) GetUserProgress(c *gin.Context) {
	log := logger.Logger()

	user, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("current user missing from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	entries, err := h.ps.GetUserProgress(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("failed to get user progress", zap.Error(err), zap.Int64("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user progress"})
		return
	}

	quests := make([]progressEntryResponse, len(entries))
	for i, entry := range entries {
		quests[i] = progressEntryResponse{
			QuestID:     entry.QuestID.String(),
			Title:       entry.Title,
			Status:      string(entry.Status),
			CompletedAt: entry.CompletedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username":       user.Username,
			"wallet_address": user.WalletAddress,
			"xp_total":       user.XPTotal,
		},
		"quests": quests,
	})
}
