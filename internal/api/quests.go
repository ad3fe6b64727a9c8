package api

import (
	"errors"
	"net/http"

	"social_quests_api/internal/model"
	"social_quests_api/internal/service"
	"social_quests_api/pkg/auth"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type questRoutes struct {
	qs service.QuestServiceI
	ps service.ProgressServiceI
}

func NewQuestRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, ps service.ProgressServiceI, gate *auth.TokenAuth) {
	h := &questRoutes{qs: qs, ps: ps}

	quests := handler.Group("/quests")
	quests.Use(gate.Middleware())
	{
		quests.GET("", h.ListQuests)
		quests.POST("", h.CreateQuest)
		quests.POST("/:quest_id/complete", h.CompleteQuest)
		quests.DELETE("/:quest_id", h.DeactivateQuest)
	}
}

type questResponse struct {
	QuestID       string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url,omitempty"`
	XPReward      int    `json:"xp_reward"`
	RequiredLevel int    `json:"required_level"`
}

func (h *questRoutes) ListQuests(c *gin.Context) {
	log := logger.Logger()

	quests, err := h.qs.ListActiveQuests(c.Request.Context())
	if err != nil {
		log.Error("failed to list quests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list quests"})
		return
	}

	response := make([]questResponse, len(quests))
	for i, quest := range quests {
		response[i] = questResponse{
			QuestID:       quest.QuestID.String(),
			Title:         quest.Title,
			Description:   quest.Description,
			URL:           quest.URL,
			XPReward:      quest.XPReward,
			RequiredLevel: quest.RequiredLevel,
		}
	}

	c.JSON(http.StatusOK, response)
}

type CreateQuestRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description" binding:"required"`
	URL           string `json:"url"`
	XPReward      int    `json:"xp_reward" binding:"required,min=1"`
	RequiredLevel int    `json:"required_level" binding:"min=0"`
}

func (h *questRoutes) CreateQuest(c *gin.Context) {
	log := logger.Logger()

	var req CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	quest := &model.Quest{
		QuestID:       uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		URL:           req.URL,
		XPReward:      req.XPReward,
		RequiredLevel: req.RequiredLevel,
	}

	questID, err := h.qs.CreateQuest(c.Request.Context(), quest)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
			return
		}
		log.Error("failed to create quest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create quest"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"quest_id": questID,
	})
}

func (h *questRoutes) CompleteQuest(c *gin.Context) {
	log := logger.Logger()

	user, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("current user missing from context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	questID, err := uuid.Parse(c.Param("quest_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}

	result, err := h.ps.CompleteQuest(c.Request.Context(), user.ID, questID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
		case errors.Is(err, service.ErrQuestAlreadyCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "quest already completed"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		default:
			log.Error("failed to complete quest", zap.Error(err),
				zap.Int64("user_id", user.ID), zap.String("quest_id", questID.String()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete quest"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"xp_gained": result.XPGained,
		"total_xp":  result.TotalXP,
	})
}

func (h *questRoutes) DeactivateQuest(c *gin.Context) {
	log := logger.Logger()

	questID, err := uuid.Parse(c.Param("quest_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}

	err = h.qs.DeactivateQuest(c.Request.Context(), questID)
	if err != nil {
		if errors.Is(err, service.ErrQuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
			return
		}
		log.Error("failed to deactivate quest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate quest"})
		return
	}

	c.Status(http.StatusNoContent)
}
