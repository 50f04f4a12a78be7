package sqlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/types"
)

const selectPosts = "SELECT " + PostColumns + " FROM posts p"

func TestPosts(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    types.PostQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "native order",
			dialect: SQLite,
			wantSQL: selectPosts + " ORDER BY p.post_date DESC, p.id DESC",
		},
		{
			name:    "content lookup",
			dialect: SQLite,
			query: types.PostQuery{
				PostTypes: []string{"book"},
				TaxQuery:  []types.TaxQuery{{Taxonomy: "genre", Field: types.TaxFieldTermID, Terms: []any{int64(3)}}},
			},
			wantSQL: selectPosts + " WHERE p.post_type IN (?) AND p.id IN (SELECT tr.object_id FROM term_relationships tr" +
				" JOIN terms t ON t.id = tr.term_id WHERE t.taxonomy = ? AND t.id IN (?)) ORDER BY p.post_date DESC, p.id DESC",
			wantArgs: []any{"book", "genre", int64(3)},
		},
		{
			name:    "postgres numbers placeholders in order",
			dialect: Postgres,
			query: types.PostQuery{
				PostTypes: []string{"book", "event"},
				Search:    "dune",
				Limit:     5,
			},
			wantSQL: selectPosts + " WHERE p.post_type IN ($1, $2) AND (p.title ILIKE $3 OR p.content ILIKE $4)" +
				" ORDER BY p.post_date DESC, p.id DESC LIMIT $5",
			wantArgs: []any{"book", "event", "%dune%", "%dune%", 5},
		},
		{
			name:    "not in by slug",
			dialect: SQLite,
			query: types.PostQuery{
				TaxQuery: []types.TaxQuery{{Taxonomy: "genre", Field: types.TaxFieldSlug, Terms: []any{"horror"}, Operator: types.TaxOperatorNotIn}},
			},
			wantSQL: selectPosts + " WHERE p.id NOT IN (SELECT tr.object_id FROM term_relationships tr" +
				" JOIN terms t ON t.id = tr.term_id WHERE t.taxonomy = ? AND t.slug IN (?)) ORDER BY p.post_date DESC, p.id DESC",
			wantArgs: []any{"genre", "horror"},
		},
		{
			name:    "and counts distinct terms",
			dialect: Postgres,
			query: types.PostQuery{
				TaxQuery: []types.TaxQuery{{Taxonomy: "color", Field: types.TaxFieldName, Terms: []any{"Red", "Blue", "Red"}, Operator: types.TaxOperatorAnd}},
			},
			wantSQL: selectPosts + " WHERE (SELECT COUNT(DISTINCT t.id) FROM term_relationships tr JOIN terms t ON t.id = tr.term_id" +
				" WHERE tr.object_id = p.id AND t.taxonomy = $1 AND t.name IN ($2, $3, $4)) = $5 ORDER BY p.post_date DESC, p.id DESC",
			wantArgs: []any{"color", "Red", "Blue", "Red", 2},
		},
		{
			name:    "fields statuses author ids",
			dialect: SQLite,
			query: types.PostQuery{
				Statuses: []string{types.PostStatusPublish},
				IDs:      []int64{1, 2},
				AuthorID: 9,
				Fields:   []types.FieldQuery{{Key: "isbn", Value: "123"}},
			},
			wantSQL: selectPosts + " WHERE p.status IN (?) AND p.id IN (?, ?) AND p.author_id = ?" +
				" AND EXISTS (SELECT 1 FROM postmeta m WHERE m.post_id = p.id AND m.meta_key = ? AND m.meta_value = ?)" +
				" ORDER BY p.post_date DESC, p.id DESC",
			wantArgs: []any{types.PostStatusPublish, int64(1), int64(2), int64(9), "isbn", `"123"`},
		},
		{
			name:     "order and offset without limit",
			dialect:  SQLite,
			query:    types.PostQuery{OrderBy: types.OrderByTitle, Order: types.OrderAsc, Offset: 10},
			wantSQL:  selectPosts + " ORDER BY p.title ASC, p.id ASC LIMIT -1 OFFSET ?",
			wantArgs: []any{10},
		},
		{
			name:     "order by id on postgres",
			dialect:  Postgres,
			query:    types.PostQuery{OrderBy: types.OrderByID, Offset: 10},
			wantSQL:  selectPosts + " ORDER BY p.id DESC LIMIT ALL OFFSET $1",
			wantArgs: []any{10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Posts(tt.dialect, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPostsInvalid(t *testing.T) {
	_, _, err := Posts(SQLite, types.PostQuery{OrderBy: "rand"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	_, _, err = Posts(SQLite, types.PostQuery{Fields: []types.FieldQuery{{Key: "k", Value: make(chan int)}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestTerms(t *testing.T) {
	sql, args := Terms(Postgres, types.TermQuery{Taxonomy: "genre", IDs: []int64{3, 4}, Limit: 2})
	assert.Equal(t, "SELECT "+TermColumns+" FROM terms t WHERE t.taxonomy = $1 AND t.id IN ($2, $3) ORDER BY t.name ASC, t.id ASC LIMIT $4", sql)
	assert.Equal(t, []any{"genre", int64(3), int64(4), 2}, args)
}

func TestAssociatedTermIDs(t *testing.T) {
	sql, args := AssociatedTermIDs(SQLite, 10, "genre")
	assert.Equal(t, "SELECT tr.term_id FROM term_relationships tr JOIN terms t ON t.id = tr.term_id"+
		" WHERE tr.object_id = ? AND t.taxonomy = ? ORDER BY tr.term_order ASC, tr.id ASC", sql)
	assert.Equal(t, []any{int64(10), "genre"}, args)
}

func TestUsers(t *testing.T) {
	sql, args := Users(SQLite, types.UserQuery{Role: types.RoleEditor, Limit: 1})
	assert.Equal(t, "SELECT "+UserColumns+" FROM users u WHERE u.id IN (SELECT ur.user_id FROM user_roles ur WHERE ur.role = ?)"+
		" ORDER BY u.login ASC LIMIT ?", sql)
	assert.Equal(t, []any{types.RoleEditor, 1}, args)
}

func TestMetaValueRoundTrip(t *testing.T) {
	for _, v := range []any{"text", float64(3), true, nil} {
		s, err := EncodeMetaValue(v)
		require.NoError(t, err)
		got, err := DecodeMetaValue(s)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Sci-Fi":           "sci-fi",
		"  Hello, World! ": "hello-world",
		"Top 10":           "top-10",
		"already-slug":     "already-slug",
		"!!!":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
