package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/model"
	"github.com/mesh-intelligence/silk/pkg/types"
)

type storeBook struct{ model.Post }

type storeGenre struct{ model.Term }

var (
	storeBookClass  = model.MustRegisterContent[storeBook]("book")
	storeGenreClass = model.MustRegisterTaxonomy[storeGenre]("genre")
)

func TestAttachTerm(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	postID, err := b.SetPost(ctx, &types.Post{PostType: "book"})
	require.NoError(t, err)
	first, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Sci-Fi"})
	require.NoError(t, err)
	second, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Classic"})
	require.NoError(t, err)
	color, err := b.SetTerm(ctx, &types.Term{Taxonomy: "color", Name: "Red"})
	require.NoError(t, err)

	require.NoError(t, b.AttachTerm(ctx, postID, second))
	require.NoError(t, b.AttachTerm(ctx, postID, first))
	require.NoError(t, b.AttachTerm(ctx, postID, second), "attaching twice is a no-op")
	require.NoError(t, b.AttachTerm(ctx, postID, color))

	ids, err := b.AssociatedTermIDs(ctx, postID, "genre")
	require.NoError(t, err)
	assert.Equal(t, []int64{second, first}, ids, "attachment order within a taxonomy")

	ids, err = b.AssociatedTermIDs(ctx, 999, "genre")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	assert.ErrorIs(t, b.AttachTerm(ctx, postID, 999), types.ErrNotFound)
	assert.ErrorIs(t, b.AttachTerm(ctx, 999, first), types.ErrNotFound)
	assert.ErrorIs(t, b.AttachTerm(ctx, 0, first), types.ErrInvalidID)
}

func TestDetachTerm(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	postID, err := b.SetPost(ctx, &types.Post{PostType: "book"})
	require.NoError(t, err)
	termID, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Sci-Fi"})
	require.NoError(t, err)
	require.NoError(t, b.AttachTerm(ctx, postID, termID))

	require.NoError(t, b.DetachTerm(ctx, postID, termID))
	assert.ErrorIs(t, b.DetachTerm(ctx, postID, termID), types.ErrNotFound)
}

// seedLibrary stores two books tagged Sci-Fi, the older one first, and
// returns the repo with the book and genre ids.
func seedLibrary(t *testing.T) (*model.Repo, int64, int64, int64) {
	t.Helper()
	ctx := context.Background()
	b, _ := newTestBackend(t)
	repo := model.NewRepo(b)

	genre, err := model.Make[storeGenre]()
	require.NoError(t, err)
	genre.Name = "Sci-Fi"
	_, err = repo.Save(ctx, genre)
	require.NoError(t, err)

	dune, err := model.Make[storeBook]()
	require.NoError(t, err)
	dune.Title = "Dune"
	dune.Date = testEpoch.Add(time.Hour)
	_, err = repo.Save(ctx, dune)
	require.NoError(t, err)

	solaris, err := model.Make[storeBook]()
	require.NoError(t, err)
	solaris.Title = "Solaris"
	solaris.Date = testEpoch
	_, err = repo.Save(ctx, solaris)
	require.NoError(t, err)

	require.NoError(t, repo.Attach(ctx, dune, genre))
	require.NoError(t, repo.Attach(ctx, solaris, genre))
	return repo, dune.ID, solaris.ID, genre.ID
}

func TestResolveRelatedOverSQLite(t *testing.T) {
	ctx := context.Background()
	repo, dune, solaris, genre := seedLibrary(t)

	book, err := model.FromID[storeBook](ctx, repo, dune)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)

	genres, err := model.Related[storeGenre](ctx, repo.Resolver(), book)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, genre, genres[0].ID)
	assert.Equal(t, "Sci-Fi", genres[0].Name)

	g, err := model.FromID[storeGenre](ctx, repo, genre)
	require.NoError(t, err)
	books, err := model.Related[storeBook](ctx, repo.Resolver(), g)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, dune, books[0].ID, "newest first")
	assert.Equal(t, solaris, books[1].ID)

	_, err = repo.Related(ctx, book, storeBookClass)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	_, err = repo.Related(ctx, g, storeGenreClass)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestResolveRelatedWithoutTerms(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	repo := model.NewRepo(b)

	book, err := model.Make[storeBook]()
	require.NoError(t, err)
	_, err = repo.Save(ctx, book)
	require.NoError(t, err)

	genres, err := repo.Related(ctx, book, storeGenreClass)
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestFromIDRejectsOtherPostType(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	repo := model.NewRepo(b)

	id, err := b.SetPost(ctx, &types.Post{PostType: "event"})
	require.NoError(t, err)

	_, err = model.FromID[storeBook](ctx, repo, id)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
	_, err = model.FromID[storeBook](ctx, repo, id+1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
