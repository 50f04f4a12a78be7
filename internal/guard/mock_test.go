package guard

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// mockStore is a testify mock of types.Store.
type mockStore struct {
	mock.Mock
}

var _ types.Store = (*mockStore)(nil)

func (m *mockStore) AssociatedTermIDs(ctx context.Context, contentID int64, taxonomy string) ([]int64, error) {
	args := m.Called(ctx, contentID, taxonomy)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockStore) AttachTerm(ctx context.Context, postID, termID int64) error {
	return m.Called(ctx, postID, termID).Error(0)
}

func (m *mockStore) DetachTerm(ctx context.Context, postID, termID int64) error {
	return m.Called(ctx, postID, termID).Error(0)
}

func (m *mockStore) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*types.Post)
	return p, args.Error(1)
}

func (m *mockStore) SetPost(ctx context.Context, p *types.Post) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeletePost(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) QueryPosts(ctx context.Context, q types.PostQuery) ([]*types.Post, error) {
	args := m.Called(ctx, q)
	posts, _ := args.Get(0).([]*types.Post)
	return posts, args.Error(1)
}

func (m *mockStore) GetTerm(ctx context.Context, id int64) (*types.Term, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*types.Term)
	return t, args.Error(1)
}

func (m *mockStore) SetTerm(ctx context.Context, t *types.Term) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteTerm(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) FetchTerms(ctx context.Context, q types.TermQuery) ([]*types.Term, error) {
	args := m.Called(ctx, q)
	terms, _ := args.Get(0).([]*types.Term)
	return terms, args.Error(1)
}

func (m *mockStore) GetPostType(ctx context.Context, slug string) (*types.PostType, error) {
	args := m.Called(ctx, slug)
	pt, _ := args.Get(0).(*types.PostType)
	return pt, args.Error(1)
}

func (m *mockStore) SetPostType(ctx context.Context, pt *types.PostType) error {
	return m.Called(ctx, pt).Error(0)
}

func (m *mockStore) DeletePostType(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func (m *mockStore) ListPostTypes(ctx context.Context) ([]*types.PostType, error) {
	args := m.Called(ctx)
	pts, _ := args.Get(0).([]*types.PostType)
	return pts, args.Error(1)
}

func (m *mockStore) GetUser(ctx context.Context, id int64) (*types.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*types.User)
	return u, args.Error(1)
}

func (m *mockStore) SetUser(ctx context.Context, u *types.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) QueryUsers(ctx context.Context, q types.UserQuery) ([]*types.User, error) {
	args := m.Called(ctx, q)
	users, _ := args.Get(0).([]*types.User)
	return users, args.Error(1)
}
