package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// QueryBuilder monta consultas PostgREST sobre uma tabela ou view
type QueryBuilder struct {
	c       *Client
	table   string
	columns string
	filters url.Values
	orders  []string
	limit   int
	offset  int
	single  bool
}

func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{c: c, table: table, filters: url.Values{}}
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

func (q *QueryBuilder) filter(column, op string, value any) *QueryBuilder {
	q.filters.Add(column, fmt.Sprintf("%s.%v", op, value))
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder  { return q.filter(column, "eq", value) }
func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder { return q.filter(column, "neq", value) }
func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder { return q.filter(column, "gte", value) }
func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder { return q.filter(column, "lte", value) }

// In filtra por lista: col=in.(a,b)
func (q *QueryBuilder) In(column string, values ...string) *QueryBuilder {
	return q.filter(column, "in", "("+strings.Join(values, ",")+")")
}

// ILike filtra case-insensitive; use * como curinga
func (q *QueryBuilder) ILike(column, pattern string) *QueryBuilder {
	return q.filter(column, "ilike", pattern)
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Single exige exatamente uma linha; zero linhas retorna erro PGRST116
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) query(withModifiers bool) url.Values {
	v := url.Values{}
	for k, vals := range q.filters {
		for _, x := range vals {
			v.Add(k, x)
		}
	}
	if q.columns != "" {
		v.Set("select", q.columns)
	}
	if !withModifiers {
		return v
	}
	for _, o := range q.orders {
		v.Add("order", o)
	}
	if q.limit > 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		v.Set("offset", strconv.Itoa(q.offset))
	}
	return v
}

func (q *QueryBuilder) headers(prefer string) map[string]string {
	h := map[string]string{}
	if q.single {
		h["Accept"] = "application/vnd.pgrst.object+json"
	}
	if prefer != "" {
		h["Prefer"] = prefer
	}
	return h
}

func (q *QueryBuilder) path() string { return "/rest/v1/" + q.table }

// Execute faz o SELECT e decodifica em out (slice, ou struct com Single)
func (q *QueryBuilder) Execute(ctx context.Context, out any) error {
	body, err := q.c.send(ctx, request{
		method:  http.MethodGet,
		path:    q.path(),
		query:   q.query(true),
		headers: q.headers(""),
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Insert grava row e devolve a representação criada em out
func (q *QueryBuilder) Insert(ctx context.Context, row any, out any) error {
	body, err := q.c.send(ctx, request{
		method:  http.MethodPost,
		path:    q.path(),
		query:   q.query(false),
		body:    row,
		headers: q.headers("return=representation"),
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Update aplica patch nas linhas filtradas
func (q *QueryBuilder) Update(ctx context.Context, patch any, out any) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("supabase: update on %s without filters", q.table)
	}
	prefer := "return=minimal"
	if out != nil {
		prefer = "return=representation"
	}
	body, err := q.c.send(ctx, request{
		method:  http.MethodPatch,
		path:    q.path(),
		query:   q.query(false),
		body:    patch,
		headers: q.headers(prefer),
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

func (q *QueryBuilder) Delete(ctx context.Context) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("supabase: delete on %s without filters", q.table)
	}
	_, err := q.c.send(ctx, request{
		method: http.MethodDelete,
		path:   q.path(),
		query:  q.query(false),
	})
	return err
}
