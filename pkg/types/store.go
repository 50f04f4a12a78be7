package types

import "context"

// AssociationIndex maps a content identifier and taxonomy slug to the ids of
// the attached terms, in store-defined order.
type AssociationIndex interface {
	AssociatedTermIDs(ctx context.Context, contentID int64, taxonomy string) ([]int64, error)
}

// RelationshipWriter maintains the association index.
type RelationshipWriter interface {
	// AttachTerm associates a post with a term. Attaching an existing pair
	// succeeds without creating a duplicate.
	AttachTerm(ctx context.Context, postID, termID int64) error

	// DetachTerm removes the association. Returns ErrNotFound if the pair
	// is not associated.
	DetachTerm(ctx context.Context, postID, termID int64) error
}

// ContentStore holds post records.
type ContentStore interface {
	// GetPost returns the post with id, or ErrNotFound.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// SetPost creates the post when p.ID is zero, otherwise updates it.
	// Returns the id used.
	SetPost(ctx context.Context, p *Post) (int64, error)

	// DeletePost removes the post and its associations, or returns ErrNotFound.
	DeletePost(ctx context.Context, id int64) error

	// QueryPosts executes q and returns matching posts in q's order.
	// Returns an empty slice when nothing matches.
	QueryPosts(ctx context.Context, q PostQuery) ([]*Post, error)
}

// TermStore holds taxonomy terms.
type TermStore interface {
	GetTerm(ctx context.Context, id int64) (*Term, error)
	SetTerm(ctx context.Context, t *Term) (int64, error)
	DeleteTerm(ctx context.Context, id int64) error
	FetchTerms(ctx context.Context, q TermQuery) ([]*Term, error)
}

// PostTypeStore holds registered post types keyed by slug.
type PostTypeStore interface {
	GetPostType(ctx context.Context, slug string) (*PostType, error)
	SetPostType(ctx context.Context, pt *PostType) error
	DeletePostType(ctx context.Context, slug string) error
	ListPostTypes(ctx context.Context) ([]*PostType, error)
}

// UserStore holds user accounts.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	SetUser(ctx context.Context, u *User) (int64, error)
	DeleteUser(ctx context.Context, id int64) error
	QueryUsers(ctx context.Context, q UserQuery) ([]*User, error)
}

// Store aggregates every contract the model layer consumes.
type Store interface {
	AssociationIndex
	RelationshipWriter
	ContentStore
	TermStore
	PostTypeStore
	UserStore
}

// Backend is a Store with an attach/detach lifecycle.
type Backend interface {
	Store

	// Attach connects to the backend described by config. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, store
	// operations return ErrBackendDetached.
	Detach() error
}
