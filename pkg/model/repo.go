package model

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// Repo binds the model layer to a host store: hydration by identifier,
// writes, queries, and relationship helpers.
type Repo struct {
	store    types.Store
	resolver *Resolver
}

// NewRepo returns a repo over store.
func NewRepo(store types.Store) *Repo {
	return &Repo{store: store, resolver: NewResolver(store)}
}

// Store returns the underlying store.
func (r *Repo) Store() types.Store { return r.store }

// Resolver returns the relationship resolver over the repo's store.
func (r *Repo) Resolver() *Resolver { return r.resolver }

// New returns an empty instance of class with its post type or taxonomy
// preset. Nothing is persisted until Save.
func (r *Repo) New(class *Class) (Entity, error) {
	return newInstance(class)
}

func newInstance(class *Class) (Entity, error) {
	family, err := Classify(class)
	if err != nil {
		return nil, err
	}
	if family == FamilyContent {
		return class.hydrate(&types.Post{PostType: class.slug, Status: types.PostStatusDraft})
	}
	return class.hydrate(&types.Term{Taxonomy: class.slug})
}

// FromID hydrates the entity of class with id. Returns ErrNotFound if no
// record exists, and ErrTypeMismatch if the record belongs to another post
// type or taxonomy.
func (r *Repo) FromID(ctx context.Context, class *Class, id int64) (Entity, error) {
	family, err := Classify(class)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, types.ErrInvalidID
	}

	if family == FamilyContent {
		rec, err := r.store.GetPost(ctx, id)
		if err != nil {
			return nil, types.NewStoreError(fmt.Sprintf("get post %d", id), err)
		}
		if rec.PostType != class.slug {
			return nil, fmt.Errorf("%w: post %d is a %q, not %s", types.ErrTypeMismatch, id, rec.PostType, class)
		}
		return class.hydrate(rec)
	}

	rec, err := r.store.GetTerm(ctx, id)
	if err != nil {
		return nil, types.NewStoreError(fmt.Sprintf("get term %d", id), err)
	}
	if rec.Taxonomy != class.slug {
		return nil, fmt.Errorf("%w: term %d is in %q, not %s", types.ErrTypeMismatch, id, rec.Taxonomy, class)
	}
	return class.hydrate(rec)
}

// Save creates or updates the entity's record and writes the assigned id
// back into it.
func (r *Repo) Save(ctx context.Context, e Entity) (int64, error) {
	switch v := e.(type) {
	case Content:
		rec := v.PostRecord()
		if err := rec.Validate(); err != nil {
			return 0, err
		}
		id, err := r.store.SetPost(ctx, rec)
		if err != nil {
			return 0, types.NewStoreError("save post", err)
		}
		rec.ID = id
		return id, nil
	case Taxonomy:
		rec := v.TermRecord()
		if err := rec.Validate(); err != nil {
			return 0, err
		}
		id, err := r.store.SetTerm(ctx, rec)
		if err != nil {
			return 0, types.NewStoreError("save term", err)
		}
		rec.ID = id
		return id, nil
	default:
		return 0, fmt.Errorf("%w: cannot save %T", types.ErrTypeMismatch, e)
	}
}

// Delete removes the entity's record.
func (r *Repo) Delete(ctx context.Context, e Entity) error {
	switch v := e.(type) {
	case Content:
		return types.NewStoreError("delete post", r.store.DeletePost(ctx, v.EntityID()))
	case Taxonomy:
		return types.NewStoreError("delete term", r.store.DeleteTerm(ctx, v.EntityID()))
	default:
		return fmt.Errorf("%w: cannot delete %T", types.ErrTypeMismatch, e)
	}
}

// Attach associates a post with a term.
func (r *Repo) Attach(ctx context.Context, post Content, term Taxonomy) error {
	return types.NewStoreError("attach term", r.store.AttachTerm(ctx, post.EntityID(), term.EntityID()))
}

// Detach removes the association between a post and a term.
func (r *Repo) Detach(ctx context.Context, post Content, term Taxonomy) error {
	return types.NewStoreError("detach term", r.store.DetachTerm(ctx, post.EntityID(), term.EntityID()))
}

// Related resolves the entities of target related to source.
func (r *Repo) Related(ctx context.Context, source Entity, target *Class) ([]Entity, error) {
	return r.resolver.ResolveRelated(ctx, source, target)
}

// Query returns a query over class.
func (r *Repo) Query(class *Class) *Query {
	return QueryClass(r.store, class)
}

// QueryFor returns a query over the post type registered for T.
func QueryFor[T any](r *Repo) (*Query, error) {
	class, err := ClassOf[T]()
	if err != nil {
		return nil, err
	}
	return r.Query(class), nil
}

// Make returns an empty T with its post type or taxonomy preset.
func Make[T any]() (*T, error) {
	class, err := ClassOf[T]()
	if err != nil {
		return nil, err
	}
	e, err := newInstance(class)
	if err != nil {
		return nil, err
	}
	return as[T](e)
}

// FromID hydrates the T with id.
func FromID[T any](ctx context.Context, r *Repo, id int64) (*T, error) {
	class, err := ClassOf[T]()
	if err != nil {
		return nil, err
	}
	e, err := r.FromID(ctx, class, id)
	if err != nil {
		return nil, err
	}
	return as[T](e)
}

// as converts e to *T. Returns ErrTypeMismatch when e holds another type.
func as[T any](e Entity) (*T, error) {
	v, ok := any(e).(*T)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", types.ErrTypeMismatch, e)
	}
	return v, nil
}
