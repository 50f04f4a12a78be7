package model

import (
	"context"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// UserQuerier executes structured user queries. types.UserStore satisfies it.
type UserQuerier interface {
	QueryUsers(ctx context.Context, q types.UserQuery) ([]*types.User, error)
}

// UserQuery builds a user query. A builder made without criteria matches
// every user.
type UserQuery struct {
	store    UserQuerier
	criteria types.UserQuery
	model    *User
}

// NewUserQuery returns a builder with empty criteria.
func NewUserQuery(store UserQuerier) *UserQuery {
	return NewUserQueryFrom(store, types.UserQuery{})
}

// NewUserQueryFrom returns a builder starting from existing criteria.
func NewUserQueryFrom(store UserQuerier, criteria types.UserQuery) *UserQuery {
	return &UserQuery{store: store, criteria: criteria}
}

// SetModel sets the model the query is about, such as the current user.
func (b *UserQuery) SetModel(u *User) *UserQuery {
	b.model = u
	return b
}

// Model returns the model set with SetModel, or nil.
func (b *UserQuery) Model() *User { return b.model }

// Role constrains results to users holding role.
func (b *UserQuery) Role(role string) *UserQuery {
	b.criteria.Role = role
	return b
}

// Search matches users whose login, email, or display name contains s.
func (b *UserQuery) Search(s string) *UserQuery {
	b.criteria.Search = s
	return b
}

// Limit caps the number of results.
func (b *UserQuery) Limit(n int) *UserQuery {
	b.criteria.Limit = n
	return b
}

// Offset skips the first n results.
func (b *UserQuery) Offset(n int) *UserQuery {
	b.criteria.Offset = n
	return b
}

// Criteria returns the accumulated criteria.
func (b *UserQuery) Criteria() types.UserQuery { return b.criteria }

// Results runs the query. The slice is never nil.
func (b *UserQuery) Results(ctx context.Context) ([]*User, error) {
	if b.criteria.Limit < 0 || b.criteria.Offset < 0 {
		return nil, types.ErrInvalidFilter
	}
	recs, err := b.store.QueryUsers(ctx, b.criteria)
	if err != nil {
		return nil, types.NewStoreError("query users", err)
	}
	out := make([]*User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &User{User: *rec})
	}
	return out, nil
}
