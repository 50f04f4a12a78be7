package types

import "fmt"

// Tax query fields select which term attribute Terms is matched against.
const (
	TaxFieldTermID = "term_id"
	TaxFieldSlug   = "slug"
	TaxFieldName   = "name"
)

// Tax query operators.
const (
	TaxOperatorIn    = "IN"
	TaxOperatorNotIn = "NOT IN"
	TaxOperatorAnd   = "AND"
)

// Sort directions.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Sortable post columns.
const (
	OrderByDate     = "date"
	OrderByModified = "modified"
	OrderByTitle    = "title"
	OrderByID       = "id"
)

var validOrderBy = map[string]bool{
	OrderByDate:     true,
	OrderByModified: true,
	OrderByTitle:    true,
	OrderByID:       true,
}

// TaxQuery is a term-membership constraint: the post must be associated with
// the listed terms of Taxonomy. Terms holds int64 ids when Field is term_id
// and strings otherwise. An empty Operator means IN.
type TaxQuery struct {
	Taxonomy string `json:"taxonomy"`
	Field    string `json:"field"`
	Terms    []any  `json:"terms"`
	Operator string `json:"operator,omitempty"`
}

// Validate checks the tax query shape. Errors wrap ErrInvalidFilter.
func (tq TaxQuery) Validate() error {
	if tq.Taxonomy == "" {
		return fmt.Errorf("%w: tax query without taxonomy", ErrInvalidFilter)
	}
	if len(tq.Terms) == 0 {
		return fmt.Errorf("%w: tax query on %q without terms", ErrInvalidFilter, tq.Taxonomy)
	}
	switch tq.Operator {
	case "", TaxOperatorIn, TaxOperatorNotIn, TaxOperatorAnd:
	default:
		return fmt.Errorf("%w: unknown tax operator %q", ErrInvalidFilter, tq.Operator)
	}
	switch tq.Field {
	case TaxFieldTermID:
		for _, t := range tq.Terms {
			if _, ok := t.(int64); !ok {
				return fmt.Errorf("%w: term_id terms must be int64, got %T", ErrInvalidFilter, t)
			}
		}
	case TaxFieldSlug, TaxFieldName:
		for _, t := range tq.Terms {
			if _, ok := t.(string); !ok {
				return fmt.Errorf("%w: %s terms must be strings, got %T", ErrInvalidFilter, tq.Field, t)
			}
		}
	default:
		return fmt.Errorf("%w: unknown tax field %q", ErrInvalidFilter, tq.Field)
	}
	return nil
}

// FieldQuery matches a post field (post meta) by equality.
type FieldQuery struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// PostQuery is the structured criteria a ContentStore executes. Zero values
// mean "no constraint". Results default to the store's native ordering,
// newest first.
type PostQuery struct {
	PostTypes []string     `json:"post_types,omitempty"`
	Statuses  []string     `json:"statuses,omitempty"`
	IDs       []int64      `json:"ids,omitempty"`
	AuthorID  int64        `json:"author_id,omitempty"`
	Search    string       `json:"search,omitempty"`
	TaxQuery  []TaxQuery   `json:"tax_query,omitempty"`
	Fields    []FieldQuery `json:"fields,omitempty"`
	OrderBy   string       `json:"order_by,omitempty"`
	Order     string       `json:"order,omitempty"`
	Limit     int          `json:"limit,omitempty"`
	Offset    int          `json:"offset,omitempty"`
}

// Validate checks every clause. Errors wrap ErrInvalidFilter.
func (q PostQuery) Validate() error {
	for _, tq := range q.TaxQuery {
		if err := tq.Validate(); err != nil {
			return err
		}
	}
	for _, s := range q.Statuses {
		if !IsValidPostStatus(s) {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, s)
		}
	}
	for _, f := range q.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: field query without key", ErrInvalidFilter)
		}
	}
	if q.OrderBy != "" && !validOrderBy[q.OrderBy] {
		return fmt.Errorf("%w: cannot order by %q", ErrInvalidFilter, q.OrderBy)
	}
	switch q.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("%w: unknown order %q", ErrInvalidFilter, q.Order)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalidFilter)
	}
	return nil
}

// TermQuery selects terms. Results are ordered by name.
type TermQuery struct {
	Taxonomy string  `json:"taxonomy,omitempty"`
	Slug     string  `json:"slug,omitempty"`
	IDs      []int64 `json:"ids,omitempty"`
	Limit    int     `json:"limit,omitempty"`
}

// UserQuery selects users. Results are ordered by login.
type UserQuery struct {
	Role   string `json:"role,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
