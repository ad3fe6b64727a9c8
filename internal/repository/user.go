package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"social_quests_api/internal/model"

	"github.com/Masterminds/squirrel"
)

type User struct {
	ID            int64          `db:"id"`
	Username      sql.NullString `db:"username"`
	Email         sql.NullString `db:"email"`
	PasswordHash  sql.NullString `db:"password_hash"`
	WalletAddress sql.NullString `db:"wallet_address"`
	XPTotal       int            `db:"xp_total"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:            u.ID,
		Username:      u.Username.String,
		Email:         u.Email.String,
		PasswordHash:  u.PasswordHash.String,
		WalletAddress: u.WalletAddress.String,
		XPTotal:       u.XPTotal,
		CreatedAt:     u.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateUser inserts a credential-scheme user. A duplicate username or email
// surfaces as ErrDuplicateUser with no partial row left behind.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"username":      nullable(user.Username),
			"email":         nullable(user.Email),
			"password_hash": nullable(user.PasswordHash),
			"xp_total":      user.XPTotal,
		}).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	var inserted User
	err = r.db.GetContext(ctx, &inserted, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = inserted.ID
	user.CreatedAt = inserted.CreatedAt
	return nil
}

// CreateWalletUser registers a wallet-scheme user on first contact with a
// zero XP total. The address must already be normalized to lowercase.
func (r *Repository) CreateWalletUser(ctx context.Context, address string) (*model.User, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"wallet_address": address,
			"xp_total":       0,
		}).
		Suffix("RETURNING id, wallet_address, xp_total, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet user insert query: %w", err)
	}

	var user User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to insert wallet user: %w", err)
	}

	return user.toModel(), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"username": username})
}

func (r *Repository) GetUserByWallet(ctx context.Context, address string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"wallet_address": address})
}

func (r *Repository) getUserWhere(ctx context.Context, pred squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.
		Select("id", "username", "email", "password_hash", "wallet_address", "xp_total", "created_at").
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

// GetTopUsers returns every user ordered by XP total descending. Ties keep
// the storage order.
func (r *Repository) GetTopUsers(ctx context.Context) ([]*model.User, error) {
	query, args, err := squirrel.
		Select("id", "username", "email", "password_hash", "wallet_address", "xp_total", "created_at").
		From("users").
		OrderBy("xp_total DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	userList := make([]*model.User, len(users))
	for i := range users {
		userList[i] = users[i].toModel()
	}

	return userList, nil
}
