package model

import "time"

// User carries both identity schemes; only one set of identity fields is
// populated per deployment (credentials or wallet, never both).
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	WalletAddress string
	XPTotal       int
	CreatedAt     time.Time
}
