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
	"github.com/jmoiron/sqlx"
)

type progressWithQuest struct {
	QuestID     uuid.UUID  `db:"quest_id"`
	Title       string     `db:"title"`
	Status      string     `db:"status"`
	CompletedAt *time.Time `db:"completed_at"`
}

// CompleteQuest moves the (user, quest) progress record to its terminal
// completed state and credits the quest's XP reward, all inside a single
// transaction. The UNIQUE(user_id, quest_id) constraint makes concurrent
// completions for the same pair lose with a 23505, which is reported as
// ErrAlreadyCompleted; the row lock serializes the in_progress transition.
func (r *Repository) CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID) (*model.CompletionResult, error) {
	var result model.CompletionResult

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		questQuery, questArgs, err := squirrel.
			Select("xp_reward").
			From("quests").
			Where(squirrel.Eq{"quest_id": questID, "is_active": true}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quest select query: %w", err)
		}

		var reward int
		err = tx.GetContext(ctx, &reward, questQuery, questArgs...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrQuestNotFound
			}
			return fmt.Errorf("failed to get quest: %w", err)
		}

		statusQuery, statusArgs, err := squirrel.
			Select("status").
			From("quest_progress").
			Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build progress select query: %w", err)
		}

		now := time.Now()

		var status string
		err = tx.GetContext(ctx, &status, statusQuery, statusArgs...)
		switch {
		case err == nil:
			if status == string(model.ProgressCompleted) {
				return ErrAlreadyCompleted
			}

			updateQuery, updateArgs, err := squirrel.
				Update("quest_progress").
				Set("status", string(model.ProgressCompleted)).
				Set("completed_at", now).
				Where(squirrel.Eq{
					"user_id":  userID,
					"quest_id": questID,
					"status":   string(model.ProgressInProgress),
				}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build progress update query: %w", err)
			}

			res, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("failed to update progress: %w", err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get affected rows: %w", err)
			}
			if rows == 0 {
				return ErrAlreadyCompleted
			}

		case errors.Is(err, sql.ErrNoRows):
			insertQuery, insertArgs, err := squirrel.
				Insert("quest_progress").
				SetMap(map[string]interface{}{
					"user_id":      userID,
					"quest_id":     questID,
					"status":       string(model.ProgressCompleted),
					"completed_at": now,
					"created_at":   now,
				}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build progress insert query: %w", err)
			}

			_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
			if err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyCompleted
				}
				return fmt.Errorf("failed to insert progress: %w", err)
			}

		default:
			return fmt.Errorf("failed to get progress: %w", err)
		}

		creditQuery, creditArgs, err := squirrel.
			Update("users").
			Set("xp_total", squirrel.Expr("xp_total + ?", reward)).
			Where(squirrel.Eq{"id": userID}).
			Suffix("RETURNING xp_total").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build xp update query: %w", err)
		}

		var total int
		err = tx.GetContext(ctx, &total, creditQuery, creditArgs...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to credit xp: %w", err)
		}

		result = model.CompletionResult{
			XPGained: reward,
			TotalXP:  total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetUserProgress returns every progress row for the user joined with the
// quest title, in insertion order.
func (r *Repository) GetUserProgress(ctx context.Context, userID int64) ([]*model.UserProgressEntry, error) {
	query, args, err := squirrel.
		Select("p.quest_id", "q.title", "p.status", "p.completed_at").
		From("quest_progress p").
		Join("quests q ON q.quest_id = p.quest_id").
		Where(squirrel.Eq{"p.user_id": userID}).
		OrderBy("p.created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*progressWithQuest
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}

	entries := make([]*model.UserProgressEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.UserProgressEntry{
			QuestID:     row.QuestID,
			Title:       row.Title,
			Status:      model.ProgressStatus(row.Status),
			CompletedAt: row.CompletedAt,
		}
	}

	return entries, nil
}
