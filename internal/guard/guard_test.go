package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

var errDisk = errors.New("disk unavailable")

func TestPassesCallsThrough(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	g := New(next, Config{}, nil)

	post := &types.Post{ID: 7, PostType: "book", Title: "Dune"}
	next.On("GetPost", mock.Anything, int64(7)).Return(post, nil)
	next.On("AssociatedTermIDs", mock.Anything, int64(7), "genre").Return([]int64{3, 1}, nil)
	next.On("AttachTerm", mock.Anything, int64(7), int64(3)).Return(nil)
	next.On("SetPostType", mock.Anything, mock.AnythingOfType("*types.PostType")).Return(nil)

	got, err := g.GetPost(ctx, 7)
	require.NoError(t, err)
	assert.Same(t, post, got)

	ids, err := g.AssociatedTermIDs(ctx, 7, "genre")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)

	require.NoError(t, g.AttachTerm(ctx, 7, 3))
	require.NoError(t, g.SetPostType(ctx, &types.PostType{Slug: "book"}))
	assert.Equal(t, "closed", g.State())
	next.AssertExpectations(t)
}

func TestAppliesCallTimeout(t *testing.T) {
	next := new(mockStore)
	g := New(next, Config{Timeout: time.Minute}, nil)

	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})
	next.On("DeletePost", hasDeadline, int64(1)).Return(nil)

	require.NoError(t, g.DeletePost(context.Background(), 1))
	next.AssertExpectations(t)
}

func TestNegativeTimeoutDisablesDeadline(t *testing.T) {
	next := new(mockStore)
	g := New(next, Config{Timeout: -1}, nil)

	noDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return !ok
	})
	next.On("DeletePost", noDeadline, int64(1)).Return(nil)

	require.NoError(t, g.DeletePost(context.Background(), 1))
	next.AssertExpectations(t)
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	g := New(next, Config{MaxFailures: 2, OpenTimeout: time.Hour}, nil)

	next.On("GetTerm", mock.Anything, int64(1)).Return(nil, errDisk)

	for i := 0; i < 2; i++ {
		_, err := g.GetTerm(ctx, 1)
		assert.ErrorIs(t, err, errDisk)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.GetTerm(ctx, 1)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, types.ErrExternalStore)
	var se *types.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "get term", se.Op)

	next.AssertNumberOfCalls(t, "GetTerm", 2)
}

func TestInputErrorsDoNotTripCircuit(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	g := New(next, Config{MaxFailures: 1, OpenTimeout: time.Hour}, nil)

	next.On("GetPost", mock.Anything, int64(404)).Return(nil, types.ErrNotFound)
	next.On("SetUser", mock.Anything, mock.Anything).Return(int64(0), types.ErrInvalidData)

	for i := 0; i < 3; i++ {
		_, err := g.GetPost(ctx, 404)
		assert.ErrorIs(t, err, types.ErrNotFound)
	}
	_, err := g.SetUser(ctx, &types.User{})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	assert.Equal(t, "closed", g.State())
	next.AssertNumberOfCalls(t, "GetPost", 3)
}

func TestCallerCancellationDoesNotTripCircuit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	next := new(mockStore)
	g := New(next, Config{MaxFailures: 1, OpenTimeout: time.Hour}, nil)

	next.On("GetTerm", mock.Anything, int64(1)).Return(nil, fmt.Errorf("query term: %w", context.Canceled))

	for i := 0; i < 3; i++ {
		_, err := g.GetTerm(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", g.State())
	next.AssertNumberOfCalls(t, "GetTerm", 3)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	next := new(mockStore)
	g := New(next, Config{Rate: 0.001, Burst: 1}, nil)

	next.On("ListPostTypes", mock.Anything).Return([]*types.PostType{}, nil)

	_, err := g.ListPostTypes(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.ListPostTypes(ctx)
	assert.ErrorIs(t, err, types.ErrExternalStore)
	next.AssertNumberOfCalls(t, "ListPostTypes", 1)
}

func TestGuardedStoreBehindModel(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	g := New(next, Config{MaxFailures: 1, OpenTimeout: time.Hour}, nil)

	next.On("GetPostType", mock.Anything, "event").Return(nil, errDisk).Once()

	_, err := model.NewPostTypes(g).Exists(ctx, "event")
	assert.ErrorIs(t, err, types.ErrExternalStore)

	_, err = model.NewPostTypes(g).Exists(ctx, "event")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	next.AssertExpectations(t)
}
