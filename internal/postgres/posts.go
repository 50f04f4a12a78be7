package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetPost returns the post with id and its fields, or ErrNotFound.
func (b *Backend) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := db.QueryRowContext(ctx, "SELECT "+sqlquery.PostColumns+" FROM posts p WHERE p.id = $1", id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get post %d: %w", id, err)
	}
	if err := loadFields(ctx, db, []*types.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPost creates or updates a post and replaces its fields.
func (b *Backend) SetPost(ctx context.Context, p *types.Post) (int64, error) {
	if p == nil {
		return 0, types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	meta := make(map[string]string, len(p.Fields))
	for k, v := range p.Fields {
		enc, err := sqlquery.EncodeMetaValue(v)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %v", types.ErrInvalidData, k, err)
		}
		meta[k] = enc
	}

	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = types.PostStatusDraft
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

	id := p.ID
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		if isCreate {
			err := tx.QueryRowContext(ctx,
				`INSERT INTO posts (post_type, title, name, status, content, guid, author_id, post_date, post_modified)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
				p.PostType, p.Title, p.Name, p.Status, p.Content, p.GUID, p.AuthorID, p.Date, p.Modified,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("postgres: insert post: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx,
				`UPDATE posts SET post_type = $1, title = $2, name = $3, status = $4, content = $5, author_id = $6,
				 post_date = $7, post_modified = $8 WHERE id = $9`,
				p.PostType, p.Title, p.Name, p.Status, p.Content, p.AuthorID, p.Date, p.Modified, id,
			)
			if err != nil {
				return fmt.Errorf("postgres: update post %d: %w", id, err)
			}
			if err := notFound(res); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM postmeta WHERE post_id = $1", id); err != nil {
				return fmt.Errorf("postgres: clear post meta: %w", err)
			}
		}
		for k, v := range meta {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)", id, k, v,
			); err != nil {
				return fmt.Errorf("postgres: insert post meta %q: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

// DeletePost removes a post; meta and associations cascade.
func (b *Backend) DeletePost(ctx context.Context, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	return b.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("postgres: delete post %d: %w", id, err)
		}
		return notFound(res)
	})
}

// QueryPosts executes q.
func (b *Backend) QueryPosts(ctx context.Context, q types.PostQuery) ([]*types.Post, error) {
	query, args, err := sqlquery.Posts(dialect, q)
	if err != nil {
		return nil, err
	}
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query posts: %w", err)
	}
	defer rows.Close()

	results := []*types.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan post: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate posts: %w", err)
	}
	if err := loadFields(ctx, db, results); err != nil {
		return nil, err
	}
	return results, nil
}

func loadFields(ctx context.Context, db *sql.DB, posts []*types.Post) error {
	for _, p := range posts {
		rows, err := db.QueryContext(ctx, "SELECT meta_key, meta_value FROM postmeta WHERE post_id = $1 ORDER BY id", p.ID)
		if err != nil {
			return fmt.Errorf("postgres: query post meta: %w", err)
		}
		for rows.Next() {
			var key, raw string
			if err := rows.Scan(&key, &raw); err != nil {
				rows.Close()
				return fmt.Errorf("postgres: scan post meta: %w", err)
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
			return fmt.Errorf("postgres: iterate post meta: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*types.Post, error) {
	var p types.Post
	if err := row.Scan(&p.ID, &p.PostType, &p.Title, &p.Name, &p.Status, &p.Content, &p.GUID, &p.AuthorID, &p.Date, &p.Modified); err != nil {
		return nil, err
	}
	p.Date = p.Date.UTC()
	p.Modified = p.Modified.UTC()
	return &p, nil
}
