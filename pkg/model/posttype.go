package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// PostTypes manages registered post types.
type PostTypes struct {
	store types.PostTypeStore
}

// NewPostTypes returns a post type manager over store.
func NewPostTypes(store types.PostTypeStore) *PostTypes {
	return &PostTypes{store: store}
}

// PostType is a registered post type bound to its store. Label and feature
// fields are promoted from the record.
type PostType struct {
	types.PostType
	store types.PostTypeStore
}

// Exists reports whether a post type with slug is registered.
func (s *PostTypes) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.store.GetPostType(ctx, slug)
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, types.NewStoreError("get post type", err)
	}
	return true, nil
}

// Load returns the registered post type with slug.
// Returns ErrNonExistentPostType if none is registered.
func (s *PostTypes) Load(ctx context.Context, slug string) (*PostType, error) {
	rec, err := s.store.GetPostType(ctx, slug)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: no post type exists with name %q", types.ErrNonExistentPostType, slug)
	}
	if err != nil {
		return nil, types.NewStoreError("get post type", err)
	}
	return &PostType{PostType: *rec, store: s.store}, nil
}

// Make loads the post type with slug if it is registered. Otherwise it
// returns a builder for registering it; exactly one of the results is
// non-nil on success.
func (s *PostTypes) Make(ctx context.Context, slug string) (*PostType, *PostTypeBuilder, error) {
	exists, err := s.Exists(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, s.Builder(slug), nil
	}
	pt, err := s.Load(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return pt, nil, nil
}

// ForClass is Make for the post type of a content class.
func (s *PostTypes) ForClass(ctx context.Context, class *Class) (*PostType, *PostTypeBuilder, error) {
	family, err := Classify(class)
	if err != nil {
		return nil, nil, err
	}
	if family != FamilyContent {
		return nil, nil, fmt.Errorf("%w: %s has no post type", types.ErrTypeMismatch, class)
	}
	return s.Make(ctx, class.Slug())
}

// List returns every registered post type ordered by slug.
func (s *PostTypes) List(ctx context.Context) ([]*PostType, error) {
	recs, err := s.store.ListPostTypes(ctx)
	if err != nil {
		return nil, types.NewStoreError("list post types", err)
	}
	out := make([]*PostType, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &PostType{PostType: *rec, store: s.store})
	}
	return out, nil
}

// Builder returns a builder for a new post type with slug.
func (s *PostTypes) Builder(slug string) *PostTypeBuilder {
	return &PostTypeBuilder{store: s.store, def: types.PostType{Slug: slug}}
}

// AddSupportFor registers support for features and persists the change.
func (pt *PostType) AddSupportFor(ctx context.Context, features ...string) error {
	pt.AddSupport(features...)
	return types.NewStoreError("set post type", pt.store.SetPostType(ctx, &pt.PostType))
}

// RemoveSupportFor drops support for features and persists the change.
func (pt *PostType) RemoveSupportFor(ctx context.Context, features ...string) error {
	pt.RemoveSupport(features...)
	return types.NewStoreError("set post type", pt.store.SetPostType(ctx, &pt.PostType))
}

// Unregister removes the post type.
// Returns ErrNonExistentPostType if it is no longer registered.
func (pt *PostType) Unregister(ctx context.Context) error {
	err := pt.store.DeletePostType(ctx, pt.Slug)
	if errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("%w: no post type exists with name %q", types.ErrNonExistentPostType, pt.Slug)
	}
	return types.NewStoreError("delete post type", err)
}

// PostTypeBuilder accumulates the definition of a post type to register.
type PostTypeBuilder struct {
	store types.PostTypeStore
	def   types.PostType
}

// Slug returns the slug being built.
func (b *PostTypeBuilder) Slug() string { return b.def.Slug }

// One sets the singular label.
func (b *PostTypeBuilder) One(label string) *PostTypeBuilder {
	b.def.One = label
	return b
}

// Many sets the plural label.
func (b *PostTypeBuilder) Many(label string) *PostTypeBuilder {
	b.def.Many = label
	return b
}

// Supports adds supported features.
func (b *PostTypeBuilder) Supports(features ...string) *PostTypeBuilder {
	b.def.AddSupport(features...)
	return b
}

// Public marks the post type as publicly queryable.
func (b *PostTypeBuilder) Public(public bool) *PostTypeBuilder {
	b.def.Public = public
	return b
}

// Register validates and stores the post type. Missing labels default to the
// slug for One and One plus "s" for Many. Returns ErrPostTypeExists if the
// slug is taken.
func (b *PostTypeBuilder) Register(ctx context.Context) (*PostType, error) {
	if err := b.def.Validate(); err != nil {
		return nil, fmt.Errorf("register post type %q: %w", b.def.Slug, err)
	}
	_, err := b.store.GetPostType(ctx, b.def.Slug)
	if err == nil {
		return nil, fmt.Errorf("%w: %q", types.ErrPostTypeExists, b.def.Slug)
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, types.NewStoreError("get post type", err)
	}

	def := b.def
	def.Supports = append([]string(nil), b.def.Supports...)
	if def.One == "" {
		def.One = def.Slug
	}
	if def.Many == "" {
		def.Many = def.One + "s"
	}
	if err := b.store.SetPostType(ctx, &def); err != nil {
		return nil, types.NewStoreError("set post type", err)
	}
	return &PostType{PostType: def, store: b.store}, nil
}
