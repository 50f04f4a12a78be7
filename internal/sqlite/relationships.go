package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// AttachTerm associates a post with a term. Both must exist. Attaching an
// associated pair is a no-op.
func (b *Backend) AttachTerm(ctx context.Context, postID, termID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}
	if postID <= 0 || termID <= 0 {
		return types.ErrInvalidID
	}
	if err := b.exists(ctx, "posts", postID); err != nil {
		return fmt.Errorf("attach to post %d: %w", postID, err)
	}
	if err := b.exists(ctx, "terms", termID); err != nil {
		return fmt.Errorf("attach term %d: %w", termID, err)
	}

	var present int
	err := b.db.QueryRowContext(ctx,
		"SELECT 1 FROM term_relationships WHERE object_id = ? AND term_id = ?", postID, termID,
	).Scan(&present)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking relationship: %w", err)
	}

	return b.withTx(ctx, []string{tableRelationships}, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO term_relationships (object_id, term_id, term_order) VALUES (?, ?, 0)", postID, termID,
		); err != nil {
			return fmt.Errorf("inserting relationship: %w", err)
		}
		return nil
	})
}

// DetachTerm removes the association, or returns ErrNotFound.
func (b *Backend) DetachTerm(ctx context.Context, postID, termID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	return b.withTx(ctx, []string{tableRelationships}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM term_relationships WHERE object_id = ? AND term_id = ?", postID, termID,
		)
		if err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// AssociatedTermIDs returns the ids of the terms of taxonomy attached to a
// post, in term order then attachment order. A post without terms, or an
// unknown post, yields an empty slice.
func (b *Backend) AssociatedTermIDs(ctx context.Context, contentID int64, taxonomy string) ([]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	query, args := sqlquery.AssociatedTermIDs(sqlquery.SQLite, contentID, taxonomy)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying associated terms: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning term id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating associated terms: %w", err)
	}
	return ids, nil
}

// exists returns ErrNotFound unless table has a row with id.
func (b *Backend) exists(ctx context.Context, table string, id int64) error {
	var one int
	err := b.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return err
}
