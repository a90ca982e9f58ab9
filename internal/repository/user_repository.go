package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/utils"
)

// UserRepo provides persistence for user accounts.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts the user, returning its ID.
// Emails are normalized to lower case before storage.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		// 1062 is MySQL's duplicate-key code; SQLite reports "UNIQUE constraint".
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") || strings.Contains(msg, "unique") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

// GetByEmail fetches a user by normalized email. sql.ErrNoRows passes
// through so the login handler can answer with a uniform
// invalid-credentials message.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, email, password_hash, role, created_at FROM users WHERE email = ? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, email, password_hash, role, created_at FROM users WHERE id = ? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}
