package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// PostQuerier executes structured post queries. types.ContentStore
// satisfies it.
type PostQuerier interface {
	QueryPosts(ctx context.Context, q types.PostQuery) ([]*types.Post, error)
}

// Criterion is one constraint added to a Query.
type Criterion interface {
	apply(q *types.PostQuery)
}

type criterionFunc func(q *types.PostQuery)

func (f criterionFunc) apply(q *types.PostQuery) { f(q) }

// TaxFilter constrains results to posts matching the tax query.
func TaxFilter(tq types.TaxQuery) Criterion {
	return criterionFunc(func(q *types.PostQuery) {
		q.TaxQuery = append(q.TaxQuery, tq)
	})
}

// TermIn constrains results to posts attached to any of the term ids.
func TermIn(taxonomy string, termIDs ...int64) Criterion {
	terms := make([]any, len(termIDs))
	for i, id := range termIDs {
		terms[i] = id
	}
	return TaxFilter(types.TaxQuery{Taxonomy: taxonomy, Field: types.TaxFieldTermID, Terms: terms})
}

// TypeEquals constrains results to one post type.
func TypeEquals(slug string) Criterion {
	return criterionFunc(func(q *types.PostQuery) {
		q.PostTypes = []string{slug}
	})
}

// StatusIn constrains results to the given statuses.
func StatusIn(statuses ...string) Criterion {
	return criterionFunc(func(q *types.PostQuery) {
		q.Statuses = append(q.Statuses, statuses...)
	})
}

// AuthorIs constrains results to posts by one author.
func AuthorIs(id int64) Criterion {
	return criterionFunc(func(q *types.PostQuery) {
		q.AuthorID = id
	})
}

// FieldEquals constrains results to posts whose field key equals value.
func FieldEquals(key string, value any) Criterion {
	return criterionFunc(func(q *types.PostQuery) {
		q.Fields = append(q.Fields, types.FieldQuery{Key: key, Value: value})
	})
}

// Query builds a post query and hydrates its results into a class.
// Builder methods return the query for chaining; validation is deferred to
// Execute.
type Query struct {
	store    PostQuerier
	class    *Class
	criteria types.PostQuery
}

// NewQuery returns a query over every post type that hydrates plain *Post
// values.
func NewQuery(store PostQuerier) *Query {
	return &Query{store: store, class: anyPost}
}

// anyPost hydrates plain posts without constraining the post type.
var anyPost = &Class{name: "post", family: FamilyContent, goType: postType}

// QueryClass returns a query constrained to class's post type that hydrates
// instances of class.
func QueryClass(store PostQuerier, class *Class) *Query {
	q := &Query{store: store, class: class}
	if class != nil && class.family == FamilyContent && class.slug != "" {
		q.criteria.PostTypes = []string{class.slug}
	}
	return q
}

// WithFilter adds a criterion.
func (q *Query) WithFilter(c Criterion) *Query {
	c.apply(&q.criteria)
	return q
}

// Type constrains results to one post type.
func (q *Query) Type(slug string) *Query { return q.WithFilter(TypeEquals(slug)) }

// Status constrains results to the given statuses.
func (q *Query) Status(statuses ...string) *Query { return q.WithFilter(StatusIn(statuses...)) }

// Author constrains results to posts by one author.
func (q *Query) Author(id int64) *Query { return q.WithFilter(AuthorIs(id)) }

// Search matches posts whose title or content contains s.
func (q *Query) Search(s string) *Query {
	q.criteria.Search = s
	return q
}

// Limit caps the number of results. Zero means no limit.
func (q *Query) Limit(n int) *Query {
	q.criteria.Limit = n
	return q
}

// Offset skips the first n results.
func (q *Query) Offset(n int) *Query {
	q.criteria.Offset = n
	return q
}

// OrderBy replaces the native ordering.
func (q *Query) OrderBy(field, direction string) *Query {
	q.criteria.OrderBy = field
	q.criteria.Order = direction
	return q
}

// Criteria returns a copy of the accumulated criteria.
func (q *Query) Criteria() types.PostQuery {
	c := q.criteria
	c.PostTypes = slices.Clone(q.criteria.PostTypes)
	c.Statuses = slices.Clone(q.criteria.Statuses)
	c.IDs = slices.Clone(q.criteria.IDs)
	c.Fields = slices.Clone(q.criteria.Fields)
	c.TaxQuery = slices.Clone(q.criteria.TaxQuery)
	for i := range c.TaxQuery {
		c.TaxQuery[i].Terms = slices.Clone(c.TaxQuery[i].Terms)
	}
	return c
}

// Execute validates the criteria, runs the query, and hydrates each record.
// Results keep the store's order. Returns an empty slice when nothing
// matches.
func (q *Query) Execute(ctx context.Context) ([]Entity, error) {
	if q.class != anyPost {
		family, err := Classify(q.class)
		if err != nil {
			return nil, err
		}
		if family != FamilyContent {
			return nil, fmt.Errorf("%w: cannot query posts as %s", types.ErrTypeMismatch, q.class)
		}
	}
	if err := q.criteria.Validate(); err != nil {
		return nil, err
	}

	records, err := q.store.QueryPosts(ctx, q.criteria)
	if err != nil {
		return nil, types.NewStoreError("query posts", err)
	}

	results := make([]Entity, 0, len(records))
	for _, rec := range records {
		e, err := q.class.hydrate(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}

// First returns the first result, or ErrNotFound.
func (q *Query) First(ctx context.Context) (Entity, error) {
	saved := q.criteria.Limit
	q.criteria.Limit = 1
	results, err := q.Execute(ctx)
	q.criteria.Limit = saved
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, types.ErrNotFound
	}
	return results[0], nil
}

// Collect converts entities to *T. Returns ErrTypeMismatch if any entity is
// not a *T.
func Collect[T any](entities []Entity) ([]*T, error) {
	out := make([]*T, 0, len(entities))
	for _, e := range entities {
		v, ok := any(e).(*T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", types.ErrTypeMismatch, e)
		}
		out = append(out, v)
	}
	return out, nil
}

// Find runs the query registered for T and returns typed results.
func Find[T any](ctx context.Context, store PostQuerier, criteria ...Criterion) ([]*T, error) {
	class, err := ClassOf[T]()
	if err != nil {
		return nil, err
	}
	q := QueryClass(store, class)
	for _, c := range criteria {
		q.WithFilter(c)
	}
	results, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return Collect[T](results)
}
