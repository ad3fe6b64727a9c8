package model

import (
	"time"

	"github.com/google/uuid"
)

type Quest struct {
	QuestID       uuid.UUID
	Title         string
	Description   string
	URL           string
	XPReward      int
	RequiredLevel int
	IsActive      bool
	CreatedAt     time.Time
}

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type QuestProgress struct {
	UserID      int64
	QuestID     uuid.UUID
	Status      ProgressStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// UserProgressEntry is a progress row joined with its quest title.
type UserProgressEntry struct {
	QuestID     uuid.UUID
	Title       string
	Status      ProgressStatus
	CompletedAt *time.Time
}

// CompletionResult reports the XP credited by a single completion and the
// user's running total after the credit.
type CompletionResult struct {
	XPGained int
	TotalXP  int
}
