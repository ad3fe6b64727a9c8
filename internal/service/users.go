package service

import (
	"context"
	"errors"
	"fmt"

	"social_quests_api/internal/model"
	"social_quests_api/internal/repository"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"
)

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetLeaderboard returns all users ordered by XP descending. A storage
// failure is logged and reported as an empty board rather than an error.
func (s *UserService) GetLeaderboard(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.GetTopUsers(ctx)
	if err != nil {
		logger.Logger().Error("failed to get leaderboard", zap.Error(err))
		return []*model.User{}, nil
	}
	return users, nil
}
