package sqlite

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/types"
)

func TestSetPostCreate(t *testing.T) {
	ctx := context.Background()
	b, dataDir := newTestBackend(t)

	p := &types.Post{PostType: "book", Title: "Dune"}
	id, err := b.SetPost(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, types.PostStatusDraft, p.Status)

	guid, err := uuid.Parse(p.GUID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), guid.Version())
	assert.True(t, testEpoch.Add(time.Second).Equal(p.Date))

	data, err := os.ReadFile(jsonlFile(dataDir, tablePosts))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], p.GUID)
	assert.Contains(t, lines[0], "Dune")
}

func TestSetPostUpdate(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := &types.Post{PostType: "book", Title: "Dune", Fields: map[string]any{"isbn": "1", "stale": true}}
	id, err := b.SetPost(ctx, p)
	require.NoError(t, err)
	created := p.Date

	p.Title = "Dune Messiah"
	p.Status = types.PostStatusPublish
	p.Fields = map[string]any{"isbn": "2"}
	_, err = b.SetPost(ctx, p)
	require.NoError(t, err)

	got, err := b.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, types.PostStatusPublish, got.Status)
	assert.Equal(t, map[string]any{"isbn": "2"}, got.Fields)
	assert.True(t, created.Equal(got.Date), "creation date is kept")
	assert.True(t, got.Modified.After(got.Date))
}

func TestSetPostErrors(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	tests := []struct {
		name    string
		post    *types.Post
		wantErr error
	}{
		{"nil post", nil, types.ErrInvalidData},
		{"missing post type", &types.Post{Title: "x"}, types.ErrInvalidData},
		{"bad status", &types.Post{PostType: "book", Status: "gone"}, types.ErrInvalidData},
		{"unknown id", &types.Post{ID: 404, PostType: "book"}, types.ErrNotFound},
		{"unencodable field", &types.Post{PostType: "book", Fields: map[string]any{"f": func() {}}}, types.ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.SetPost(ctx, tt.post)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetPostErrors(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.GetPost(ctx, 0)
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = b.GetPost(ctx, 99)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	postID, err := b.SetPost(ctx, &types.Post{PostType: "book", Fields: map[string]any{"k": "v"}})
	require.NoError(t, err)
	termID, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Sci-Fi"})
	require.NoError(t, err)
	require.NoError(t, b.AttachTerm(ctx, postID, termID))

	require.NoError(t, b.DeletePost(ctx, postID))
	_, err = b.GetPost(ctx, postID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, b.DeletePost(ctx, postID), types.ErrNotFound)

	ids, err := b.AssociatedTermIDs(ctx, postID, "genre")
	require.NoError(t, err)
	assert.Empty(t, ids)

	var metaRows int
	require.NoError(t, b.db.QueryRow("SELECT COUNT(*) FROM postmeta").Scan(&metaRows))
	assert.Zero(t, metaRows)
}

func TestQueryPosts(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	mustPost := func(p *types.Post) int64 {
		t.Helper()
		id, err := b.SetPost(ctx, p)
		require.NoError(t, err)
		return id
	}
	dune := mustPost(&types.Post{PostType: "book", Title: "Dune", Status: types.PostStatusPublish, AuthorID: 1, Fields: map[string]any{"lang": "en"}})
	solaris := mustPost(&types.Post{PostType: "book", Title: "Solaris", Status: types.PostStatusDraft, AuthorID: 2, Fields: map[string]any{"lang": "pl"}})
	launch := mustPost(&types.Post{PostType: "event", Title: "Dune launch", Status: types.PostStatusPublish, AuthorID: 1})

	scifi, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Sci-Fi"})
	require.NoError(t, err)
	classic, err := b.SetTerm(ctx, &types.Term{Taxonomy: "genre", Name: "Classic"})
	require.NoError(t, err)
	require.NoError(t, b.AttachTerm(ctx, dune, scifi))
	require.NoError(t, b.AttachTerm(ctx, dune, classic))
	require.NoError(t, b.AttachTerm(ctx, solaris, scifi))

	genre := func(op string, terms ...any) types.TaxQuery {
		return types.TaxQuery{Taxonomy: "genre", Field: types.TaxFieldTermID, Terms: terms, Operator: op}
	}

	tests := []struct {
		name  string
		query types.PostQuery
		want  []int64
	}{
		{"native order is newest first", types.PostQuery{}, []int64{launch, solaris, dune}},
		{"by type", types.PostQuery{PostTypes: []string{"book"}}, []int64{solaris, dune}},
		{"by status", types.PostQuery{Statuses: []string{types.PostStatusPublish}}, []int64{launch, dune}},
		{"by author", types.PostQuery{AuthorID: 2}, []int64{solaris}},
		{"by ids", types.PostQuery{IDs: []int64{dune, launch}}, []int64{launch, dune}},
		{"search is case-insensitive", types.PostQuery{Search: "dune"}, []int64{launch, dune}},
		{"term in", types.PostQuery{TaxQuery: []types.TaxQuery{genre("", scifi)}}, []int64{solaris, dune}},
		{"term not in", types.PostQuery{PostTypes: []string{"book"}, TaxQuery: []types.TaxQuery{genre(types.TaxOperatorNotIn, classic)}}, []int64{solaris}},
		{"term and", types.PostQuery{TaxQuery: []types.TaxQuery{genre(types.TaxOperatorAnd, scifi, classic)}}, []int64{dune}},
		{"term slug", types.PostQuery{TaxQuery: []types.TaxQuery{{Taxonomy: "genre", Field: types.TaxFieldSlug, Terms: []any{"classic"}}}}, []int64{dune}},
		{"field equals", types.PostQuery{Fields: []types.FieldQuery{{Key: "lang", Value: "pl"}}}, []int64{solaris}},
		{"title ascending", types.PostQuery{OrderBy: types.OrderByTitle, Order: types.OrderAsc}, []int64{dune, launch, solaris}},
		{"limit and offset", types.PostQuery{Limit: 1, Offset: 1}, []int64{solaris}},
		{"offset only", types.PostQuery{Offset: 2}, []int64{dune}},
		{"no match", types.PostQuery{PostTypes: []string{"page"}}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := b.QueryPosts(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, posts)
			got := make([]int64, len(posts))
			for i, p := range posts {
				got[i] = p.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}

	posts, err := b.QueryPosts(ctx, types.PostQuery{IDs: []int64{dune}})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, map[string]any{"lang": "en"}, posts[0].Fields)

	_, err = b.QueryPosts(ctx, types.PostQuery{Statuses: []string{"gone"}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}
