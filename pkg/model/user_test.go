package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/types"
)

func TestUserQueryWithoutCriteria(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryUsers", ctx, types.UserQuery{}).Return(nil, nil)

	results, err := NewUserQuery(store).Results(ctx)
	require.NoError(t, err)
	assert.NotNil(t, results, "results are a collection even when empty")
	assert.Empty(t, results)
}

func TestUserQueryModel(t *testing.T) {
	u := &User{User: types.User{ID: 1, Login: "admin"}}
	b := NewUserQuery(&mockStore{})
	assert.Nil(t, b.Model())
	assert.Same(t, b, b.SetModel(u))
	assert.Same(t, u, b.Model())
	assert.Equal(t, int64(1), b.Model().EntityID())
}

func TestUserQueryCriteria(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	want := types.UserQuery{Role: types.RoleEditor, Search: "ann", Limit: 5, Offset: 5}
	store.On("QueryUsers", ctx, want).Return([]*types.User{{ID: 7, Login: "ann", Roles: []string{types.RoleEditor}}}, nil)

	results, err := NewUserQueryFrom(store, types.UserQuery{Search: "ann"}).
		Role(types.RoleEditor).
		Limit(5).
		Offset(5).
		Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].HasRole(types.RoleEditor))

	_, err = NewUserQuery(store).Limit(-1).Results(ctx)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestUserQueryStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("QueryUsers", ctx, types.UserQuery{Search: "x"}).Return(nil, assert.AnError)

	_, err := NewUserQuery(store).Search("x").Results(ctx)
	assert.ErrorIs(t, err, types.ErrExternalStore)
}
