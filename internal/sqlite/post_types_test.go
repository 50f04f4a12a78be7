package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

func TestPostTypeStore(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.GetPostType(ctx, "event")
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, b.SetPostType(ctx, &types.PostType{Slug: "event", One: "Event", Many: "Events"}))
	require.NoError(t, b.SetPostType(ctx, &types.PostType{Slug: "book", One: "Book", Many: "Books", Supports: []string{types.FeatureTitle}}))

	pt, err := b.GetPostType(ctx, "event")
	require.NoError(t, err)
	assert.Equal(t, []string{}, pt.Supports)

	pt.Supports = []string{types.FeatureEditor}
	require.NoError(t, b.SetPostType(ctx, pt), "set replaces")

	list, err := b.ListPostTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "book", list[0].Slug)
	assert.Equal(t, []string{types.FeatureEditor}, list[1].Supports)

	require.NoError(t, b.DeletePostType(ctx, "event"))
	assert.ErrorIs(t, b.DeletePostType(ctx, "event"), types.ErrNotFound)

	assert.ErrorIs(t, b.SetPostType(ctx, &types.PostType{Slug: "Bad Slug"}), types.ErrInvalidSlug)
	assert.ErrorIs(t, b.SetPostType(ctx, nil), types.ErrInvalidData)
}

func TestPostTypeLifecycleOverSQLite(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	pts := model.NewPostTypes(b)

	pt, builder, err := pts.Make(ctx, "dinosaur")
	require.NoError(t, err)
	require.Nil(t, pt)
	pt, err = builder.Supports(types.FeatureTitle).Register(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dinosaurs", pt.Many)

	_, err = pts.Builder("dinosaur").Register(ctx)
	assert.ErrorIs(t, err, types.ErrPostTypeExists)

	require.NoError(t, pt.AddSupportFor(ctx, types.FeatureEditor))
	loaded, err := pts.Load(ctx, "dinosaur")
	require.NoError(t, err)
	assert.True(t, loaded.SupportsAll(types.FeatureTitle, types.FeatureEditor))

	require.NoError(t, loaded.RemoveSupportFor(ctx, types.FeatureTitle))
	loaded, err = pts.Load(ctx, "dinosaur")
	require.NoError(t, err)
	assert.False(t, loaded.SupportsAll(types.FeatureTitle))

	require.NoError(t, loaded.Unregister(ctx))
	exists, err := pts.Exists(ctx, "dinosaur")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, loaded.Unregister(ctx), types.ErrNonExistentPostType)
}
