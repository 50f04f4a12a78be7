package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetPost retrieves a post by ID with its fields.
func (b *Backend) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRowContext(ctx, "SELECT "+sqlquery.PostColumns+" FROM posts p WHERE p.id = ?", id)
	p, err := hydratePost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	if err := b.hydrateFields(ctx, []*types.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPost creates the post when p.ID is zero and updates it otherwise.
// Creation assigns the id, a UUID v7 GUID, and the dates; an empty status
// becomes draft. Fields replace the stored post meta.
func (b *Backend) SetPost(ctx context.Context, p *types.Post) (int64, error) {
	if p == nil {
		return 0, types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	now := b.now().UTC()
	if p.Status == "" {
		p.Status = types.PostStatusDraft
	}
	meta := make(map[string]string, len(p.Fields))
	for k, v := range p.Fields {
		enc, err := sqlquery.EncodeMetaValue(v)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %v", types.ErrInvalidData, k, err)
		}
		meta[k] = enc
	}

	isCreate := p.ID == 0
	if isCreate {
		if p.GUID == "" {
			guid, err := uuid.NewV7()
			if err != nil {
				return 0, fmt.Errorf("generating UUID v7: %w", err)
			}
			p.GUID = guid.String()
		}
		if p.Date.IsZero() {
			p.Date = now
		}
	}
	p.Modified = now

	err := b.withTx(ctx, []string{tablePosts, tablePostMeta}, func(tx *sql.Tx) error {
		if isCreate {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO posts (post_type, title, name, status, content, guid, author_id, post_date, post_modified)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.PostType, p.Title, p.Name, p.Status, p.Content, p.GUID, p.AuthorID, formatTime(p.Date), formatTime(p.Modified),
			)
			if err != nil {
				return fmt.Errorf("inserting post: %w", err)
			}
			if p.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("reading post id: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx,
				`UPDATE posts SET post_type = ?, title = ?, name = ?, status = ?, content = ?, author_id = ?, post_date = ?, post_modified = ?
				 WHERE id = ?`,
				p.PostType, p.Title, p.Name, p.Status, p.Content, p.AuthorID, formatTime(p.Date), formatTime(p.Modified), p.ID,
			)
			if err != nil {
				return fmt.Errorf("updating post %d: %w", p.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return types.ErrNotFound
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM postmeta WHERE post_id = ?", p.ID); err != nil {
				return fmt.Errorf("clearing post meta: %w", err)
			}
		}
		for k, v := range meta {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)", p.ID, k, v,
			); err != nil {
				return fmt.Errorf("inserting post meta %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		if isCreate {
			p.ID = 0
		}
		return 0, err
	}
	return p.ID, nil
}

// DeletePost removes a post with its meta and term associations.
func (b *Backend) DeletePost(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}
	if id <= 0 {
		return types.ErrInvalidID
	}

	return b.withTx(ctx, []string{tablePosts, tablePostMeta, tableRelationships}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting post %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM postmeta WHERE post_id = ?", id); err != nil {
			return fmt.Errorf("deleting post meta: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM term_relationships WHERE object_id = ?", id); err != nil {
			return fmt.Errorf("deleting term relationships: %w", err)
		}
		return nil
	})
}

// QueryPosts executes q. Results are in q's order, newest first by default.
func (b *Backend) QueryPosts(ctx context.Context, q types.PostQuery) ([]*types.Post, error) {
	query, args, err := sqlquery.Posts(sqlquery.SQLite, q)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	results := []*types.Post{}
	for rows.Next() {
		p, err := hydratePost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("hydrating post: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	rows.Close()

	if err := b.hydrateFields(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// hydrateFields loads post meta into each post's Fields.
func (b *Backend) hydrateFields(ctx context.Context, posts []*types.Post) error {
	for _, p := range posts {
		rows, err := b.db.QueryContext(ctx, "SELECT meta_key, meta_value FROM postmeta WHERE post_id = ? ORDER BY id", p.ID)
		if err != nil {
			return fmt.Errorf("querying post meta: %w", err)
		}
		for rows.Next() {
			var key, raw string
			if err := rows.Scan(&key, &raw); err != nil {
				rows.Close()
				return fmt.Errorf("scanning post meta: %w", err)
			}
			v, err := sqlquery.DecodeMetaValue(raw)
			if err != nil {
				v = raw
			}
			p.SetField(key, v)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating post meta: %w", err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// hydratePost converts a row selected with sqlquery.PostColumns.
func hydratePost(row rowScanner) (*types.Post, error) {
	var p types.Post
	var date, modified string
	if err := row.Scan(&p.ID, &p.PostType, &p.Title, &p.Name, &p.Status, &p.Content, &p.GUID, &p.AuthorID, &date, &modified); err != nil {
		return nil, err
	}
	var err error
	if p.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if p.Modified, err = parseTime(modified); err != nil {
		return nil, err
	}
	return &p, nil
}
