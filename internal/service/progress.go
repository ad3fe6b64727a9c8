package service

import (
	"context"
	"errors"
	"fmt"

	"social_quests_api/internal/model"
	"social_quests_api/internal/repository"

	"github.com/google/uuid"
)

// LeaderboardNotifier is poked after a successful completion so derived
// views can refresh. Best effort, must not block.
type LeaderboardNotifier interface {
	LeaderboardChanged()
}

type ProgressService struct {
	repo     ProgressRepository
	notifier LeaderboardNotifier
}

// NewProgressService builds the progress engine. notifier may be nil.
func NewProgressService(repo ProgressRepository, notifier LeaderboardNotifier) *ProgressService {
	return &ProgressService{
		repo:     repo,
		notifier: notifier,
	}
}

// CompleteQuest credits the quest's XP reward exactly once per (user, quest)
// pair. Repeat and racing invocations fail with ErrQuestAlreadyCompleted and
// leave the XP total untouched.
func (s *ProgressService) CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.CompletionResult, error) {
	result, err := s.repo.CompleteQuest(ctx, userID, questID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQuestNotFound):
			return nil, ErrQuestNotFound
		case errors.Is(err, repository.ErrAlreadyCompleted):
			return nil, ErrQuestAlreadyCompleted
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to complete quest: %w", err)
		}
	}

	if s.notifier != nil {
		s.notifier.LeaderboardChanged()
	}

	return result, nil
}

func (s *ProgressService) GetUserProgress(ctx context.Context, userID int64) ([]*model.UserProgressEntry, error) {
	entries, err := s.repo.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return entries, nil
}
