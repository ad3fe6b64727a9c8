package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"social_quests_api/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Quest struct {
	QuestID       uuid.UUID      `db:"quest_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	URL           sql.NullString `db:"url"`
	XPReward      int            `db:"xp_reward"`
	RequiredLevel int            `db:"required_level"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (q *Quest) toModel() *model.Quest {
	return &model.Quest{
		QuestID:       q.QuestID,
		Title:         q.Title,
		Description:   q.Description,
		URL:           q.URL.String,
		XPReward:      q.XPReward,
		RequiredLevel: q.RequiredLevel,
		IsActive:      q.IsActive,
		CreatedAt:     q.CreatedAt,
	}
}

func (r *Repository) CreateQuest(ctx context.Context, quest *model.Quest) error {
	query, args, err := squirrel.
		Insert("quests").
		SetMap(map[string]interface{}{
			"quest_id":       quest.QuestID,
			"title":          quest.Title,
			"description":    quest.Description,
			"url":            nullable(quest.URL),
			"xp_reward":      quest.XPReward,
			"required_level": quest.RequiredLevel,
			"is_active":      true,
			"created_at":     time.Now(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quest insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert quest: %w", err)
	}

	return nil
}

func (r *Repository) GetActiveQuests(ctx context.Context) ([]*model.Quest, error) {
	query, args, err := squirrel.
		Select("quest_id", "title", "description", "url", "xp_reward", "required_level", "is_active", "created_at").
		From("quests").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var quests []Quest
	err = r.db.SelectContext(ctx, &quests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}

	questList := make([]*model.Quest, len(quests))
	for i := range quests {
		questList[i] = quests[i].toModel()
	}

	return questList, nil
}

func (r *Repository) GetQuestByID(ctx context.Context, questID uuid.UUID) (*model.Quest, error) {
	query, args, err := squirrel.
		Select("quest_id", "title", "description", "url", "xp_reward", "required_level", "is_active", "created_at").
		From("quests").
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var quest Quest
	err = r.db.GetContext(ctx, &quest, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return quest.toModel(), nil
}

// DeactivateQuest clears the active flag. Quests are never deleted so
// historical progress rows stay resolvable.
func (r *Repository) DeactivateQuest(ctx context.Context, questID uuid.UUID) error {
	query, args, err := squirrel.
		Update("quests").
		Set("is_active", false).
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate quest: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
