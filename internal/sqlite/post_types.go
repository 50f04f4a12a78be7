package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetPostType retrieves a registered post type by slug.
func (b *Backend) GetPostType(ctx context.Context, slug string) (*types.PostType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	row := b.db.QueryRowContext(ctx, "SELECT slug, one, many, supports, public FROM post_types WHERE slug = ?", slug)
	pt, err := hydratePostType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post type %q: %w", slug, err)
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
	supports, err := json.Marshal(nonNil(pt.Supports))
	if err != nil {
		return fmt.Errorf("encoding supports: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	return b.withTx(ctx, []string{tablePostTypes}, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_types (slug, one, many, supports, public) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(slug) DO UPDATE SET one = excluded.one, many = excluded.many,
			 supports = excluded.supports, public = excluded.public`,
			pt.Slug, pt.One, pt.Many, string(supports), pt.Public,
		)
		if err != nil {
			return fmt.Errorf("saving post type %q: %w", pt.Slug, err)
		}
		return nil
	})
}

// DeletePostType removes a post type, or returns ErrNotFound.
func (b *Backend) DeletePostType(ctx context.Context, slug string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	return b.withTx(ctx, []string{tablePostTypes}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM post_types WHERE slug = ?", slug)
		if err != nil {
			return fmt.Errorf("deleting post type %q: %w", slug, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// ListPostTypes returns every post type ordered by slug.
func (b *Backend) ListPostTypes(ctx context.Context) ([]*types.PostType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, "SELECT slug, one, many, supports, public FROM post_types ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("listing post types: %w", err)
	}
	defer rows.Close()

	results := []*types.PostType{}
	for rows.Next() {
		pt, err := hydratePostType(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating post type: %w", err)
		}
		results = append(results, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post types: %w", err)
	}
	return results, nil
}

func hydratePostType(row rowScanner) (*types.PostType, error) {
	var pt types.PostType
	var supports string
	if err := row.Scan(&pt.Slug, &pt.One, &pt.Many, &supports, &pt.Public); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(supports), &pt.Supports); err != nil {
		return nil, fmt.Errorf("decoding supports of %q: %w", pt.Slug, err)
	}
	return &pt, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
