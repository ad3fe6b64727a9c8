package service

import (
	"context"
	"errors"

	"social_quests_api/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")

	ErrQuestNotFound         = errors.New("quest not found")
	ErrQuestAlreadyCompleted = errors.New("quest already completed")
	ErrInvalidQuest          = errors.New("invalid quest")
)

type AuthServiceI interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
	AuthenticateByWallet(ctx context.Context, address string) (*model.User, error)
}

type UserServiceI interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetLeaderboard(ctx context.Context) ([]*model.User, error)
}

type QuestServiceI interface {
	ListActiveQuests(ctx context.Context) ([]*model.Quest, error)
	CreateQuest(ctx context.Context, quest *model.Quest) (uuid.UUID, error)
	DeactivateQuest(ctx context.Context, questID uuid.UUID) error
}

type ProgressServiceI interface {
	CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.CompletionResult, error)
	GetUserProgress(ctx context.Context, userID int64) ([]*model.UserProgressEntry, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	CreateWalletUser(ctx context.Context, address string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByWallet(ctx context.Context, address string) (*model.User, error)
	GetTopUsers(ctx context.Context) ([]*model.User, error)
}

type QuestRepository interface {
	CreateQuest(ctx context.Context, quest *model.Quest) error
	GetActiveQuests(ctx context.Context) ([]*model.Quest, error)
	GetQuestByID(ctx context.Context, questID uuid.UUID) (*model.Quest, error)
	DeactivateQuest(ctx context.Context, questID uuid.UUID) error
}

type ProgressRepository interface {
	CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.CompletionResult, error)
	GetUserProgress(ctx context.Context, userID int64) ([]*model.UserProgressEntry, error)
}
