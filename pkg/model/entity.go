package model

import "github.com/mesh-intelligence/silk/pkg/types"

// Entity is any typed model.
type Entity interface {
	EntityID() int64
}

// Content is implemented by every type that embeds Post.
type Content interface {
	Entity
	PostRecord() *types.Post
	bindPost(rec *types.Post)
}

// Taxonomy is implemented by every type that embeds Term.
type Taxonomy interface {
	Entity
	TermRecord() *types.Term
	bindTerm(rec *types.Term)
}

// Post is the embeddable base for content models. The record fields are
// promoted, so a Book embedding Post reads book.ID and book.Title directly.
type Post struct {
	types.Post
}

// EntityID returns the post ID.
func (p *Post) EntityID() int64 { return p.ID }

// PostRecord returns the underlying record.
func (p *Post) PostRecord() *types.Post { return &p.Post }

func (p *Post) bindPost(rec *types.Post) { p.Post = *rec }

// Term is the embeddable base for taxonomy models.
type Term struct {
	types.Term
}

// EntityID returns the term ID.
func (t *Term) EntityID() int64 { return t.ID }

// TermRecord returns the underlying record.
func (t *Term) TermRecord() *types.Term { return &t.Term }

func (t *Term) bindTerm(rec *types.Term) { t.Term = *rec }

// User wraps a user record.
type User struct {
	types.User
}

// EntityID returns the user ID.
func (u *User) EntityID() int64 { return u.ID }
