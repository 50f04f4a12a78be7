package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/types"
)

func TestQueryCriteria(t *testing.T) {
	q := QueryClass(&mockStore{}, bookClass).
		WithFilter(TermIn("genre", 3, 4)).
		WithFilter(StatusIn(types.PostStatusPublish)).
		WithFilter(AuthorIs(2)).
		WithFilter(FieldEquals("isbn", "978-0441013593")).
		Search("dune").
		OrderBy(types.OrderByTitle, types.OrderAsc).
		Limit(5).
		Offset(10)

	got := q.Criteria()
	assert.Equal(t, []string{"book"}, got.PostTypes)
	assert.Equal(t, []types.TaxQuery{{Taxonomy: "genre", Field: types.TaxFieldTermID, Terms: []any{int64(3), int64(4)}}}, got.TaxQuery)
	assert.Equal(t, []string{types.PostStatusPublish}, got.Statuses)
	assert.Equal(t, int64(2), got.AuthorID)
	assert.Equal(t, []types.FieldQuery{{Key: "isbn", Value: "978-0441013593"}}, got.Fields)
	assert.Equal(t, "dune", got.Search)
	assert.Equal(t, types.OrderByTitle, got.OrderBy)
	assert.Equal(t, types.OrderAsc, got.Order)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, 10, got.Offset)
}

func TestQueryCriteriaIsACopy(t *testing.T) {
	q := QueryClass(&mockStore{}, bookClass).
		WithFilter(TermIn("genre", 3)).
		WithFilter(StatusIn(types.PostStatusPublish)).
		WithFilter(FieldEquals("isbn", "1"))
	q.criteria.IDs = []int64{10}

	got := q.Criteria()
	got.PostTypes[0] = "event"
	got.Statuses[0] = types.PostStatusDraft
	got.IDs[0] = 11
	got.Fields[0].Key = "pages"
	got.TaxQuery[0].Terms[0] = int64(4)

	again := q.Criteria()
	assert.Equal(t, []string{"book"}, again.PostTypes)
	assert.Equal(t, []string{types.PostStatusPublish}, again.Statuses)
	assert.Equal(t, []int64{10}, again.IDs)
	assert.Equal(t, "isbn", again.Fields[0].Key)
	assert.Equal(t, []any{int64(3)}, again.TaxQuery[0].Terms)
}

func TestQueryExecute(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryPosts", ctx, types.PostQuery{PostTypes: []string{"book"}, Limit: 2}).
		Return([]*types.Post{{ID: 1, PostType: "book"}, {ID: 2, PostType: "book"}}, nil)

	results, err := QueryClass(store, bookClass).Limit(2).Execute(ctx)
	require.NoError(t, err)
	books, err := Collect[Book](results)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, int64(1), books[0].ID)
	store.AssertExpectations(t)
}

func TestQueryExecute_Untyped(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryPosts", ctx, types.PostQuery{Search: "x"}).
		Return([]*types.Post{{ID: 1, PostType: "book"}, {ID: 2, PostType: "page"}}, nil)

	results, err := NewQuery(store).Search("x").Execute(ctx)
	require.NoError(t, err)
	posts, err := Collect[Post](results)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestQueryExecute_EmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryPosts", ctx, mock.Anything).Return(nil, nil)

	results, err := QueryClass(store, bookClass).Execute(ctx)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestQueryExecute_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		query   func(s *mockStore) *Query
		wantErr error
	}{
		{
			name: "invalid tax filter",
			query: func(s *mockStore) *Query {
				return QueryClass(s, bookClass).WithFilter(TaxFilter(types.TaxQuery{Field: types.TaxFieldTermID, Terms: []any{int64(1)}}))
			},
			wantErr: types.ErrInvalidFilter,
		},
		{
			name: "taxonomy class",
			query: func(s *mockStore) *Query {
				return QueryClass(s, genreClass)
			},
			wantErr: types.ErrTypeMismatch,
		},
		{
			name: "nil class",
			query: func(s *mockStore) *Query {
				return QueryClass(s, nil)
			},
			wantErr: types.ErrUnresolvableEntityClass,
		},
		{
			name: "store failure",
			query: func(s *mockStore) *Query {
				s.On("QueryPosts", ctx, mock.Anything).Return(nil, assert.AnError)
				return QueryClass(s, bookClass)
			},
			wantErr: types.ErrExternalStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			_, err := tt.query(store).Execute(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQueryFirst(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryPosts", ctx, types.PostQuery{PostTypes: []string{"book"}, Search: "dune", Limit: 1}).
		Return([]*types.Post{{ID: 10, PostType: "book"}}, nil).Once()
	store.On("QueryPosts", ctx, types.PostQuery{PostTypes: []string{"book"}, Search: "none", Limit: 1}).
		Return([]*types.Post{}, nil).Once()

	q := QueryClass(store, bookClass).Search("dune")
	e, err := q.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), e.EntityID())
	assert.Equal(t, 0, q.Criteria().Limit, "First restores the limit")

	_, err = QueryClass(store, bookClass).Search("none").First(ctx)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryPosts", ctx, genreQuery(3)).Return([]*types.Post{{ID: 10, PostType: "book"}}, nil)

	books, err := Find[Book](ctx, store, TermIn("genre", 3))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(10), books[0].ID)

	_, err = Find[Genre](ctx, store)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestCollectMismatch(t *testing.T) {
	_, err := Collect[Book]([]Entity{genre(1, "x")})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}
