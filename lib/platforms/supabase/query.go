package supabase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
)

// Query is a single table operation built up postgrest-style:
//
//	client.From("ghl_subaccounts").Select("*").Eq("agent_id", "SOL").Execute(ctx, &rows)
type Query struct {
	client  *Client
	table   string
	method  string
	filters url.Values
	body    any
	prefer  []string
	single  bool
}

func (q *Query) filter(key, value string) *Query {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	q.filters.Add(key, value)
	return q
}

func (q *Query) Select(columns string) *Query {
	q.method = "GET"
	if columns == "" {
		columns = "*"
	}
	return q.filter("select", columns)
}

func (q *Query) Insert(rows any) *Query {
	q.method = "POST"
	q.body = rows
	q.prefer = append(q.prefer, "return=representation")
	return q
}

// Upsert inserts rows, merging on conflict with the table's primary key.
func (q *Query) Upsert(rows any) *Query {
	q.method = "POST"
	q.body = rows
	q.prefer = append(q.prefer, "resolution=merge-duplicates", "return=representation")
	return q
}

func (q *Query) Update(values any) *Query {
	q.method = "PATCH"
	q.body = values
	q.prefer = append(q.prefer, "return=representation")
	return q
}

func (q *Query) Delete() *Query {
	q.method = "DELETE"
	return q
}

func (q *Query) Eq(column, value string) *Query {
	return q.filter(column, "eq."+value)
}

func (q *Query) Order(column string, ascending bool) *Query {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	return q.filter("order", fmt.Sprintf("%s.%s", column, direction))
}

func (q *Query) Limit(n int) *Query {
	return q.filter("limit", strconv.Itoa(n))
}

// Single asks the API for exactly one row as an object rather than a
// one-element array. Zero or multiple matches become an error.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Execute runs the query. `out` may be nil when the caller does not
// care about the response rows.
func (q *Query) Execute(ctx context.Context, out any) error {
	req := q.client.http.R().SetContext(ctx)

	if q.filters != nil {
		req.SetQueryParamsFromValues(q.filters)
	}
	for _, p := range q.prefer {
		req.Header.Add("Prefer", p)
	}
	if q.single {
		req.SetHeader("Accept", "application/vnd.pgrst.object+json")
	}
	if q.body != nil {
		encoded, err := json.Marshal(q.body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		req.SetBody(encoded)
	}

	res, err := req.Execute(q.method, "/"+q.table)
	if err != nil {
		return err
	}
	if res.IsError() {
		return &QueryError{Status: res.StatusCode(), Body: res.String()}
	}

	if out == nil {
		return nil
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("unmarshal rows: %w", err)
	}
	return nil
}
