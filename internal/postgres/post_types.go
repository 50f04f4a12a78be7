package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetPostType returns the post type with slug, or ErrNotFound.
func (b *Backend) GetPostType(ctx context.Context, slug string) (*types.PostType, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	pt, err := scanPostType(db.QueryRowContext(ctx, "SELECT slug, one, many, supports, public FROM post_types WHERE slug = $1", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get post type %q: %w", slug, err)
	}
	return pt, nil
}

// SetPostType creates or replaces the post type with pt.Slug.
func (b *Backend) SetPostType(ctx context.Context, pt *types.PostType) error {
	if pt == nil {
		return types.ErrInvalidData
	}
	if err := pt.Validate(); err != nil {
		return err
	}
	supports := pt.Supports
	if supports == nil {
		supports = []string{}
	}
	data, err := json.Marshal(supports)
	if err != nil {
		return fmt.Errorf("encoding supports: %w", err)
	}

	return b.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_types (slug, one, many, supports, public) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (slug) DO UPDATE SET one = EXCLUDED.one, many = EXCLUDED.many,
			 supports = EXCLUDED.supports, public = EXCLUDED.public`,
			pt.Slug, pt.One, pt.Many, string(data), pt.Public,
		)
		if err != nil {
			return fmt.Errorf("postgres: save post type %q: %w", pt.Slug, err)
		}
		return nil
	})
}

// DeletePostType removes a post type, or returns ErrNotFound.
func (b *Backend) DeletePostType(ctx context.Context, slug string) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM post_types WHERE slug = $1", slug)
		if err != nil {
			return fmt.Errorf("postgres: delete post type %q: %w", slug, err)
		}
		return notFound(res)
	})
}

// ListPostTypes returns every post type ordered by slug.
func (b *Backend) ListPostTypes(ctx context.Context) ([]*types.PostType, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT slug, one, many, supports, public FROM post_types ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("postgres: list post types: %w", err)
	}
	defer rows.Close()

	results := []*types.PostType{}
	for rows.Next() {
		pt, err := scanPostType(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan post type: %w", err)
		}
		results = append(results, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate post types: %w", err)
	}
	return results, nil
}

func scanPostType(row rowScanner) (*types.PostType, error) {
	var pt types.PostType
	var supports []byte
	if err := row.Scan(&pt.Slug, &pt.One, &pt.Many, &supports, &pt.Public); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(supports, &pt.Supports); err != nil {
		return nil, fmt.Errorf("decoding supports of %q: %w", pt.Slug, err)
	}
	return &pt, nil
}
