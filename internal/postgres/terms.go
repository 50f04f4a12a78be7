package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/internal/sqlquery"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// GetTerm returns the term with id, or ErrNotFound.
func (b *Backend) GetTerm(ctx context.Context, id int64) (*types.Term, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	var t types.Term
	err = db.QueryRowContext(ctx, "SELECT "+sqlquery.TermColumns+" FROM terms t WHERE t.id = $1", id).
		Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get term %d: %w", id, err)
	}
	return &t, nil
}

// SetTerm creates or updates a term. An empty slug is derived from the name.
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

	id := t.ID
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		if id == 0 {
			err := tx.QueryRowContext(ctx,
				"INSERT INTO terms (taxonomy, name, slug, description, parent_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
				t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID,
			).Scan(&id)
			if err != nil {
				return duplicate(err, fmt.Sprintf("%s term %q", t.Taxonomy, t.Slug))
			}
			return nil
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE terms SET taxonomy = $1, name = $2, slug = $3, description = $4, parent_id = $5 WHERE id = $6",
			t.Taxonomy, t.Name, t.Slug, t.Description, t.ParentID, id,
		)
		if err != nil {
			return duplicate(err, fmt.Sprintf("%s term %q", t.Taxonomy, t.Slug))
		}
		return notFound(res)
	})
	if err != nil {
		return 0, err
	}
	t.ID = id
	return id, nil
}

// DeleteTerm removes a term; associations cascade.
func (b *Backend) DeleteTerm(ctx context.Context, id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	return b.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM terms WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("postgres: delete term %d: %w", id, err)
		}
		return notFound(res)
	})
}

// FetchTerms returns the terms matching q ordered by name.
func (b *Backend) FetchTerms(ctx context.Context, q types.TermQuery) ([]*types.Term, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	query, args := sqlquery.Terms(dialect, q)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch terms: %w", err)
	}
	defer rows.Close()

	results := []*types.Term{}
	for rows.Next() {
		var t types.Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.ParentID); err != nil {
			return nil, fmt.Errorf("postgres: scan term: %w", err)
		}
		results = append(results, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate terms: %w", err)
	}
	return results, nil
}

// AttachTerm associates a post with a term. Attaching twice is a no-op.
func (b *Backend) AttachTerm(ctx context.Context, postID, termID int64) error {
	if postID <= 0 || termID <= 0 {
		return types.ErrInvalidID
	}
	return b.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO term_relationships (object_id, term_id) VALUES ($1, $2) ON CONFLICT (object_id, term_id) DO NOTHING",
			postID, termID,
		)
		if pqCode(err) == foreignKeyViolation {
			return fmt.Errorf("attach term %d to post %d: %w", termID, postID, types.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("postgres: attach term: %w", err)
		}
		return nil
	})
}

// DetachTerm removes the association, or returns ErrNotFound.
func (b *Backend) DetachTerm(ctx context.Context, postID, termID int64) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM term_relationships WHERE object_id = $1 AND term_id = $2", postID, termID,
		)
		if err != nil {
			return fmt.Errorf("postgres: detach term: %w", err)
		}
		return notFound(res)
	})
}

// AssociatedTermIDs returns the ids of the terms of taxonomy attached to a
// post, in term order then attachment order.
func (b *Backend) AssociatedTermIDs(ctx context.Context, contentID int64, taxonomy string) ([]int64, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	query, args := sqlquery.AssociatedTermIDs(dialect, contentID, taxonomy)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: associated terms: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan term id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate associated terms: %w", err)
	}
	return ids, nil
}
