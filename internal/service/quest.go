package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"social_quests_api/internal/model"
	"social_quests_api/internal/repository"

	"github.com/google/uuid"
)

type QuestService struct {
	repo QuestRepository
}

func NewQuestService(repo QuestRepository) *QuestService {
	return &QuestService{
		repo: repo,
	}
}

func (s *QuestService) ListActiveQuests(ctx context.Context) ([]*model.Quest, error) {
	quests, err := s.repo.GetActiveQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active quests: %w", err)
	}
	return quests, nil
}

func (s *QuestService) CreateQuest(ctx context.Context, quest *model.Quest) (uuid.UUID, error) {
	if strings.TrimSpace(quest.Title) == "" || strings.TrimSpace(quest.Description) == "" {
		return uuid.Nil, ErrInvalidQuest
	}
	if quest.XPReward <= 0 || quest.RequiredLevel < 0 {
		return uuid.Nil, ErrInvalidQuest
	}

	if err := s.repo.CreateQuest(ctx, quest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create quest: %w", err)
	}

	return quest.QuestID, nil
}

func (s *QuestService) DeactivateQuest(ctx context.Context, questID uuid.UUID) error {
	err := s.repo.DeactivateQuest(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestNotFound
		}
		return fmt.Errorf("failed to deactivate quest: %w", err)
	}
	return nil
}
