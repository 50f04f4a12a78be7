package model

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// RelationStore is the part of the host store relationship resolution reads:
// the association index, term hydration, and post queries.
type RelationStore interface {
	types.AssociationIndex
	PostQuerier
	GetTerm(ctx context.Context, id int64) (*types.Term, error)
}

// Resolver resolves related entities between the content and taxonomy
// families. It holds no state besides the store and is safe for concurrent
// use when the store is. It never retries or logs; store failures come back
// as *types.StoreError.
type Resolver struct {
	store RelationStore
}

// NewResolver returns a resolver reading from store.
func NewResolver(store RelationStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveRelated returns the entities of target related to source.
//
// A taxonomy target walks from a content source to the terms attached to it.
// A content target walks from a taxonomy source to the posts of the target's
// post type tagged with it. Any other pairing fails with ErrTypeMismatch.
func (r *Resolver) ResolveRelated(ctx context.Context, source Entity, target *Class) ([]Entity, error) {
	family, err := Classify(target)
	if err != nil {
		return nil, err
	}
	if isNil(source) {
		return nil, fmt.Errorf("%w: nil source, cannot resolve %s", types.ErrTypeMismatch, target)
	}

	switch family {
	case FamilyContent:
		term, ok := source.(Taxonomy)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a taxonomy entity, cannot resolve %s", types.ErrTypeMismatch, source, target)
		}
		return r.lookupContent(ctx, term, target)
	case FamilyTaxonomy:
		post, ok := source.(Content)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a content entity, cannot resolve %s", types.ErrTypeMismatch, source, target)
		}
		return r.lookupTaxonomy(ctx, post, target)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnresolvableEntityClass, target)
	}
}

// lookupTaxonomy hydrates the terms of target's taxonomy attached to source,
// in association order without duplicates.
func (r *Resolver) lookupTaxonomy(ctx context.Context, source Content, target *Class) ([]Entity, error) {
	postID := source.PostRecord().ID
	ids, err := r.store.AssociatedTermIDs(ctx, postID, target.Slug())
	if err != nil {
		return nil, types.NewStoreError(fmt.Sprintf("associated %s terms of post %d", target.Slug(), postID), err)
	}

	ids = uniqueIDs(ids)
	results := make([]Entity, 0, len(ids))
	for _, id := range ids {
		rec, err := r.store.GetTerm(ctx, id)
		if err != nil {
			return nil, types.NewStoreError(fmt.Sprintf("get term %d", id), err)
		}
		e, err := target.hydrate(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

// lookupContent queries the posts of target's type tagged with source.
func (r *Resolver) lookupContent(ctx context.Context, source Taxonomy, target *Class) ([]Entity, error) {
	term := source.TermRecord()
	if term.Taxonomy == "" {
		return nil, fmt.Errorf("%w: term %d has no taxonomy", types.ErrInvalidFilter, term.ID)
	}
	return QueryClass(r.store, target).
		WithFilter(TermIn(term.Taxonomy, term.ID)).
		Execute(ctx)
}

// isNil reports whether e is nil or a nil pointer in an Entity.
func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// uniqueIDs drops repeated ids, keeping the first occurrence.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Related resolves the entities of the class registered for T that relate to
// source.
func Related[T any](ctx context.Context, r *Resolver, source Entity) ([]*T, error) {
	class, err := ClassOf[T]()
	if err != nil {
		return nil, err
	}
	results, err := r.ResolveRelated(ctx, source, class)
	if err != nil {
		return nil, err
	}
	return Collect[T](results)
}
