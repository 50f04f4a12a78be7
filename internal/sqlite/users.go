package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetUser retrieves a user by ID with its roles.
func (b *Backend) GetUser(ctx context.Context, id int64) (*types.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRowContext(ctx, "SELECT "+sqlquery.UserColumns+" FROM users u WHERE u.id = ?", id)
	u, err := hydrateUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	if err := b.hydrateRoles(ctx, []*types.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUser creates the user when u.ID is zero and updates it otherwise.
// Logins are unique.
func (b *Backend) SetUser(ctx context.Context, u *types.User) (int64, error) {
	if u == nil {
		return 0, types.ErrInvalidData
	}
	if err := u.Validate(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	var dupID int64
	err := b.db.QueryRowContext(ctx, "SELECT id FROM users WHERE login = ? AND id != ?", u.Login, u.ID).Scan(&dupID)
	if err == nil {
		return 0, fmt.Errorf("%w: login %q is taken", types.ErrInvalidData, u.Login)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking login: %w", err)
	}
	if u.Registered.IsZero() {
		u.Registered = b.now().UTC()
	}

	id := u.ID
	err = b.withTx(ctx, []string{tableUsers, tableUserRoles}, func(tx *sql.Tx) error {
		if id == 0 {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO users (login, email, display_name, registered) VALUES (?, ?, ?, ?)",
				u.Login, u.Email, u.DisplayName, formatTime(u.Registered),
			)
			if err != nil {
				return fmt.Errorf("inserting user: %w", err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("reading user id: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx,
				"UPDATE users SET login = ?, email = ?, display_name = ?, registered = ? WHERE id = ?",
				u.Login, u.Email, u.DisplayName, formatTime(u.Registered), id,
			)
			if err != nil {
				return fmt.Errorf("updating user %d: %w", id, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return types.ErrNotFound
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", id); err != nil {
				return fmt.Errorf("clearing roles: %w", err)
			}
		}
		for _, role := range u.Roles {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)", id, role,
			); err != nil {
				return fmt.Errorf("inserting role %q: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// DeleteUser removes a user and its roles.
func (b *Backend) DeleteUser(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}
	if id <= 0 {
		return types.ErrInvalidID
	}

	return b.withTx(ctx, []string{tableUsers, tableUserRoles}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting user %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ?", id); err != nil {
			return fmt.Errorf("deleting roles: %w", err)
		}
		return nil
	})
}

// QueryUsers returns the users matching q ordered by login.
func (b *Backend) QueryUsers(ctx context.Context, q types.UserQuery) ([]*types.User, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", types.ErrInvalidFilter)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	query, args := sqlquery.Users(sqlquery.SQLite, q)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	results := []*types.User{}
	for rows.Next() {
		u, err := hydrateUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating user: %w", err)
		}
		results = append(results, u)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if err := b.hydrateRoles(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Backend) hydrateRoles(ctx context.Context, users []*types.User) error {
	for _, u := range users {
		rows, err := b.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ? ORDER BY rowid", u.ID)
		if err != nil {
			return fmt.Errorf("querying roles: %w", err)
		}
		for rows.Next() {
			var role string
			if err := rows.Scan(&role); err != nil {
				rows.Close()
				return fmt.Errorf("scanning role: %w", err)
			}
			u.Roles = append(u.Roles, role)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating roles: %w", err)
		}
	}
	return nil
}

func hydrateUser(row rowScanner) (*types.User, error) {
	var u types.User
	var registered string
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.DisplayName, &registered); err != nil {
		return nil, err
	}
	var err error
	if u.Registered, err = parseTime(registered); err != nil {
		return nil, err
	}
	return &u, nil
}
