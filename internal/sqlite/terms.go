package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetTerm retrieves a term by ID.
func (b *Backend) GetTerm(ctx context.Context, id int64) (*types.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRowContext(ctx, "SELECT "+sqlquery.TermColumns+" FROM terms t WHERE t.id = ?", id)
	t, err := hydrateTerm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting term %d: %w", id, err)
	}
	return t, nil
}

// SetTerm creates the term when t.ID is zero and updates it otherwise. An
// empty slug is derived from the name. Slugs are unique per taxonomy.
func (b *Backend) SetTerm(ctx context.Context, t *types.Term) (int64, error) {
	if t == nil {
		return 0, types.ErrInvalidData
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.Slug == "" {
		t.Slug = sqlquery.Slugify(t.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	var dupID int64
	err := b.db.QueryRowContext(ctx,
		"SELECT id FROM terms WHERE taxonomy = ? AND slug = ? AND id != ?", t.Taxonomy, t.Slug, t.ID,
	).Scan(&dupID)
	if err == nil {
		return 0, fmt.Errorf("%w: %s term with slug %q exists", types.ErrInvalidData, t.Taxonomy, t.Slug)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking term slug: %w", err)
	}

	id := t.ID
	err = b.withTx(ctx, []string{tableTerms}, func(tx *sql.Tx) error {
		if id == 0 {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO terms (taxonomy, name, slug, description, parent_id) VALUES (?, ?, ?, ?, ?)",
				t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID,
			)
			if err != nil {
				return fmt.Errorf("inserting term: %w", err)
			}
			id, err = res.LastInsertId()
			return err
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE terms SET taxonomy = ?, name = ?, slug = ?, description = ?, parent_id = ? WHERE id = ?",
			t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID, id,
		)
		if err != nil {
			return fmt.Errorf("updating term %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	t.ID = id
	return id, nil
}

// DeleteTerm removes a term and its associations.
func (b *Backend) DeleteTerm(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}
	if id <= 0 {
		return types.ErrInvalidID
	}

	return b.withTx(ctx, []string{tableTerms, tableRelationships}, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM terms WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting term %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM term_relationships WHERE term_id = ?", id); err != nil {
			return fmt.Errorf("deleting term relationships: %w", err)
		}
		return nil
	})
}

// FetchTerms returns the terms matching q ordered by name.
func (b *Backend) FetchTerms(ctx context.Context, q types.TermQuery) ([]*types.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	query, args := sqlquery.Terms(sqlquery.SQLite, q)
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching terms: %w", err)
	}
	defer rows.Close()

	results := []*types.Term{}
	for rows.Next() {
		t, err := hydrateTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating term: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating terms: %w", err)
	}
	return results, nil
}

// hydrateTerm converts a row selected with sqlquery.TermColumns.
func hydrateTerm(row rowScanner) (*types.Term, error) {
	var t types.Term
	if err := row.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID); err != nil {
		return nil, err
	}
	return &t, nil
}
