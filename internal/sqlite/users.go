package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/eventlink/eventlink/internal/eventlink"
)

const userNamespace = "-usr"

func (r Repo) User(ctx context.Context, id string) (eventlink.User, error) {
	const q = `SELECT * FROM users WHERE id = ?;`

	var usr eventlink.User
	err := r.q.GetContext(ctx, &usr, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.User{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.User{}, fmt.Errorf("error fetching user: %s", err)
	}

	return usr, nil
}

func (r Repo) UserByUsername(ctx context.Context, username string) (eventlink.User, error) {
	const q = `SELECT * FROM users WHERE username = ?;`

	var usr eventlink.User
	err := r.q.GetContext(ctx, &usr, q, username)
	if errors.Is(err, sql.ErrNoRows) {
		return eventlink.User{}, eventlink.ErrNotFound
	}
	if err != nil {
		return eventlink.User{}, fmt.Errorf("error fetching user by username: %s", err)
	}

	return usr, nil
}

func (r Repo) AllUsers(ctx context.Context) ([]eventlink.User, error) {
	const q = `SELECT * FROM users ORDER BY created_at DESC;`

	var users []eventlink.User
	if err := r.q.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("error selecting users: %s", err)
	}

	return users, nil
}

func (r Repo) InsertUser(ctx context.Context, usr eventlink.User) (eventlink.User, error) {
	const q = `INSERT INTO users (id, username, password, email, role)
	VALUES (:id, :username, :password, :email, :role);`

	usr.ID = uuid.NewString() + userNamespace
	if usr.Role == "" {
		usr.Role = eventlink.RoleEditor
	}
	_, err := r.q.NamedExecContext(ctx, q, usr)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteUniqueViolation {
		return eventlink.User{}, fmt.Errorf("user %q already exists: %w", usr.Username, eventlink.ErrConflict)
	}
	if err != nil {
		return eventlink.User{}, fmt.Errorf("error inserting user: %s", err)
	}

	return r.User(ctx, usr.ID)
}

func (r Repo) UpdateUser(ctx context.Context, usr eventlink.User) error {
	const q = `UPDATE users
	SET username = :username, password = :password, email = :email, role = :role,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = :id;`

	res, err := r.q.NamedExecContext(ctx, q, usr)
	if err != nil {
		return fmt.Errorf("error updating user: %s", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eventlink.ErrNotFound
	}

	return nil
}

func (r Repo) DeleteUser(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = ?;`

	if _, err := r.q.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("error deleting user: %s", err)
	}

	return nil
}
