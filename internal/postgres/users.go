package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetUser returns the user with id and its roles, or ErrNotFound.
func (b *Backend) GetUser(ctx context.Context, id int64) (*types.User, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	u, err := scanUser(db.QueryRowContext(ctx, "SELECT "+sqlquery.UserColumns+" FROM users u WHERE u.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get user %d: %w", id, err)
	}
	if err := loadRoles(ctx, db, []*types.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUser creates or updates a user and replaces its roles.
func (b *Backend) SetUser(ctx context.Context, u *types.User) (int64, error) {
	if u == nil {
		return 0, types.ErrInvalidData
	}
	if err := u.Validate(); err != nil {
		return 0, err
	}
	if u.Registered.IsZero() {
		u.Registered = time.Now().UTC()
	}

	id := u.ID
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		if id == 0 {
			err := tx.QueryRowContext(ctx,
				"INSERT INTO users (login, email, display_name, registered) VALUES ($1, $2, $3, $4) RETURNING id",
				u.Login, u.Email, u.DisplayName, u.Registered,
			).Scan(&id)
			if err != nil {
				return duplicate(err, fmt.Sprintf("login %q", u.Login))
			}
		} else {
			res, err := tx.ExecContext(ctx,
				"UPDATE users SET login = $1, email = $2, display_name = $3, registered = $4 WHERE id = $5",
				u.Login, u.Email, u.DisplayName, u.Registered, id,
			)
			if err != nil {
				return duplicate(err, fmt.Sprintf("login %q", u.Login))
			}
			if err := notFound(res); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = $1", id); err != nil {
				return fmt.Errorf("postgres: clear roles: %w", err)
			}
		}
		if len(u.Roles) == 0 {
			return nil
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING",
			id, pq.Array(u.Roles),
		)
		if err != nil {
			return fmt.Errorf("postgres: insert roles: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// DeleteUser removes a user; roles cascade.
func (b *Backend) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	return b.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("postgres: delete user %d: %w", id, err)
		}
		return notFound(res)
	})
}

// QueryUsers returns the users matching q ordered by login.
func (b *Backend) QueryUsers(ctx context.Context, q types.UserQuery) ([]*types.User, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", types.ErrInvalidFilter)
	}
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	query, args := sqlquery.Users(dialect, q)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query users: %w", err)
	}
	defer rows.Close()

	results := []*types.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate users: %w", err)
	}
	if err := loadRoles(ctx, db, results); err != nil {
		return nil, err
	}
	return results, nil
}

func loadRoles(ctx context.Context, db *sql.DB, users []*types.User) error {
	for _, u := range users {
		var roles pq.StringArray
		err := db.QueryRowContext(ctx,
			"SELECT COALESCE(array_agg(role ORDER BY position), '{}') FROM user_roles WHERE user_id = $1", u.ID,
		).Scan(&roles)
		if err != nil {
			return fmt.Errorf("postgres: load roles of user %d: %w", u.ID, err)
		}
		if len(roles) > 0 {
			u.Roles = []string(roles)
		}
	}
	return nil
}

func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.DisplayName, &u.Registered); err != nil {
		return nil, err
	}
	u.Registered = u.Registered.UTC()
	return &u, nil
}
