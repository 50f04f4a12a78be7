// Package sqlquery translates store criteria into SQL shared by the SQLite
// and PostgreSQL backends. Both schemas use the same table and column names;
// a Dialect supplies what differs.
package sqlquery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// Dialect holds the per-engine SQL differences.
type Dialect struct {
	Name string

	// Placeholder returns the bind parameter for the n-th argument, 1-based.
	Placeholder func(n int) string

	// NoLimit is the LIMIT value meaning unbounded, used when only an
	// offset is given.
	NoLimit string

	// Like is the case-insensitive pattern operator.
	Like string
}

// SQLite uses ? parameters.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	NoLimit:     "-1",
	Like:        "LIKE",
}

// Postgres uses $n parameters.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	NoLimit:     "ALL",
	Like:        "ILIKE",
}

// PostColumns is the column list every post SELECT returns, in scan order.
const PostColumns = "p.id, p.post_type, p.title, p.name, p.status, p.content, p.guid, p.author_id, p.post_date, p.post_modified"

// TermColumns is the column list every term SELECT returns, in scan order.
const TermColumns = "t.id, t.taxonomy, t.name, t.slug, t.description, t.parent_id"

// UserColumns is the column list every user SELECT returns, in scan order.
const UserColumns = "u.id, u.login, u.email, u.display_name, u.registered"

var orderColumns = map[string]string{
	types.OrderByDate:     "p.post_date",
	types.OrderByModified: "p.post_modified",
	types.OrderByTitle:    "p.title",
	types.OrderByID:       "p.id",
}

var taxColumns = map[string]string{
	types.TaxFieldTermID: "t.id",
	types.TaxFieldSlug:   "t.slug",
	types.TaxFieldName:   "t.name",
}

// builder accumulates WHERE conditions and their arguments.
type builder struct {
	d     Dialect
	conds []string
	args  []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) bindAll(vs []any) string {
	ps := make([]string, len(vs))
	for i, v := range vs {
		ps[i] = b.bind(v)
	}
	return strings.Join(ps, ", ")
}

func (b *builder) where(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *builder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func (b *builder) page(limit, offset int) string {
	var s string
	switch {
	case limit > 0:
		s = " LIMIT " + b.bind(limit)
	case offset > 0:
		s = " LIMIT " + b.d.NoLimit
	}
	if offset > 0 {
		s += " OFFSET " + b.bind(offset)
	}
	return s
}

// Posts returns the SELECT for q and its arguments. Without OrderBy, results
// are newest first with the id as tie-breaker.
func Posts(d Dialect, q types.PostQuery) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	b := &builder{d: d}

	if len(q.PostTypes) > 0 {
		b.where("p.post_type IN (" + b.bindAll(stringArgs(q.PostTypes)) + ")")
	}
	if len(q.Statuses) > 0 {
		b.where("p.status IN (" + b.bindAll(stringArgs(q.Statuses)) + ")")
	}
	if len(q.IDs) > 0 {
		b.where("p.id IN (" + b.bindAll(idArgs(q.IDs)) + ")")
	}
	if q.AuthorID > 0 {
		b.where("p.author_id = " + b.bind(q.AuthorID))
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		b.where(fmt.Sprintf("(p.title %s %s OR p.content %s %s)", d.Like, b.bind(pattern), d.Like, b.bind(pattern)))
	}
	for _, tq := range q.TaxQuery {
		b.where(taxCondition(b, tq))
	}
	for _, f := range q.Fields {
		value, err := EncodeMetaValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: field %q: %v", types.ErrInvalidFilter, f.Key, err)
		}
		b.where(fmt.Sprintf("EXISTS (SELECT 1 FROM postmeta m WHERE m.post_id = p.id AND m.meta_key = %s AND m.meta_value = %s)",
			b.bind(f.Key), b.bind(value)))
	}

	query := "SELECT " + PostColumns + " FROM posts p" + b.clause() + " ORDER BY " + postOrder(q)
	query += b.page(q.Limit, q.Offset)
	return query, b.args, nil
}

func postOrder(q types.PostQuery) string {
	dir := q.Order
	if dir == "" {
		dir = types.OrderDesc
	}
	col, ok := orderColumns[q.OrderBy]
	if !ok {
		col = orderColumns[types.OrderByDate]
	}
	if col == "p.id" {
		return col + " " + dir
	}
	return col + " " + dir + ", p.id " + dir
}

// taxCondition renders one tax query against the association index.
func taxCondition(b *builder, tq types.TaxQuery) string {
	col := taxColumns[tq.Field]
	assoc := "SELECT tr.object_id FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE t.taxonomy = %s AND %s IN (%s)"

	switch tq.Operator {
	case types.TaxOperatorNotIn:
		return "p.id NOT IN (" + fmt.Sprintf(assoc, b.bind(tq.Taxonomy), col, b.bindAll(tq.Terms)) + ")"
	case types.TaxOperatorAnd:
		return fmt.Sprintf("(SELECT COUNT(DISTINCT t.id) FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE tr.object_id = p.id AND t.taxonomy = %s AND %s IN (%s)) = %s",
			b.bind(tq.Taxonomy), col, b.bindAll(tq.Terms), b.bind(distinct(tq.Terms)))
	default:
		return "p.id IN (" + fmt.Sprintf(assoc, b.bind(tq.Taxonomy), col, b.bindAll(tq.Terms)) + ")"
	}
}

// Terms returns the SELECT for q and its arguments, ordered by name.
func Terms(d Dialect, q types.TermQuery) (string, []any) {
	b := &builder{d: d}
	if q.Taxonomy != "" {
		b.where("t.taxonomy = " + b.bind(q.Taxonomy))
	}
	if q.Slug != "" {
		b.where("t.slug = " + b.bind(q.Slug))
	}
	if len(q.IDs) > 0 {
		b.where("t.id IN (" + b.bindAll(idArgs(q.IDs)) + ")")
	}
	query := "SELECT " + TermColumns + " FROM terms t" + b.clause() + " ORDER BY t.name ASC, t.id ASC"
	query += b.page(q.Limit, 0)
	return query, b.args
}

// AssociatedTermIDs returns the SELECT listing the ids of the terms of
// taxonomy attached to a post, in term order then attachment order.
func AssociatedTermIDs(d Dialect, postID int64, taxonomy string) (string, []any) {
	b := &builder{d: d}
	b.where("tr.object_id = " + b.bind(postID))
	b.where("t.taxonomy = " + b.bind(taxonomy))
	return "SELECT tr.term_id FROM term_relationships tr JOIN terms t ON t.id = tr.term_id" +
		b.clause() + " ORDER BY tr.term_order ASC, tr.id ASC", b.args
}

// Users returns the SELECT for q and its arguments, ordered by login.
func Users(d Dialect, q types.UserQuery) (string, []any) {
	b := &builder{d: d}
	if q.Role != "" {
		b.where("u.id IN (SELECT ur.user_id FROM user_roles ur WHERE ur.role = " + b.bind(q.Role) + ")")
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		b.where(fmt.Sprintf("(u.login %s %s OR u.email %s %s OR u.display_name %s %s)",
			d.Like, b.bind(pattern), d.Like, b.bind(pattern), d.Like, b.bind(pattern)))
	}
	query := "SELECT " + UserColumns + " FROM users u" + b.clause() + " ORDER BY u.login ASC"
	query += b.page(q.Limit, q.Offset)
	return query, b.args
}

// EncodeMetaValue renders a field value the way postmeta stores it: JSON.
// Equality queries compare the encoded text, so 3 and "3" differ.
func EncodeMetaValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeMetaValue reverses EncodeMetaValue. Numbers decode as float64.
func DecodeMetaValue(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func idArgs(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func distinct(vs []any) int {
	seen := make(map[any]bool, len(vs))
	for _, v := range vs {
		seen[v] = true
	}
	return len(seen)
}

// Slugify lowercases name and joins its letter and digit runs with hyphens.
func Slugify(name string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}
