// Package query turns caller-supplied query parameters into a declarative
// query specification and translates that specification into Mongo find
// arguments. Centralizing this means ownership scoping is a single injected
// filter term rather than per-resource query logic.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 100
)

// reserved query parameters, everything else becomes a filter term
const (
	paramPage     = "page"
	paramPageSize = "pageSize"
	paramSort     = "sort"
	paramPopulate = "populate"
)

type SortField struct {
	Field string
	Desc  bool
}

// Query is the declarative specification for a list read: filter terms,
// pagination, sort order and relations to populate. It is built fresh per
// request and never persisted.
type Query struct {
	Filter   map[string]string
	Page     int64
	PageSize int64
	Sort     []SortField
	Populate []string
}

// Parse builds a Query from raw request query parameters. Pagination is
// bounds-checked, unknown parameters become filter terms.
func Parse(values url.Values) Query {
	q := Query{
		Filter:   map[string]string{},
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if v := values.Get(paramPage); v != "" {
		if page, err := strconv.ParseInt(v, 10, 64); err == nil && page > 0 {
			q.Page = page
		}
	}
	if v := values.Get(paramPageSize); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			if size > MaxPageSize {
				size = MaxPageSize
			}
			q.PageSize = size
		}
	}
	if v := values.Get(paramSort); v != "" {
		for _, field := range strings.Split(v, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if strings.HasPrefix(field, "-") {
				q.Sort = append(q.Sort, SortField{Field: field[1:], Desc: true})
			} else {
				q.Sort = append(q.Sort, SortField{Field: field})
			}
		}
	}
	if v := values.Get(paramPopulate); v != "" {
		for _, rel := range strings.Split(v, ",") {
			if rel = strings.TrimSpace(rel); rel != "" {
				q.Populate = append(q.Populate, rel)
			}
		}
	}

	for key := range values {
		switch key {
		case paramPage, paramPageSize, paramSort, paramPopulate:
			continue
		}
		q.Filter[key] = values.Get(key)
	}

	return q
}

// WithFilter returns a copy of q with an equality filter term forced in,
// replacing whatever the caller supplied for that key. Used by the service
// layer to scope list reads to the caller's own records.
func (q Query) WithFilter(key, value string) Query {
	filter := make(map[string]string, len(q.Filter)+1)
	for k, v := range q.Filter {
		filter[k] = v
	}
	filter[key] = value
	q.Filter = filter
	return q
}

// Skip is the number of documents to jump over for the requested page.
func (q Query) Skip() int64 {
	return (q.Page - 1) * q.PageSize
}

// WantsPopulate reports whether a relation was requested for population.
func (q Query) WantsPopulate(field string) bool {
	for _, rel := range q.Populate {
		if rel == field {
			return true
		}
	}
	return false
}

// Page holds one page of results plus the total match count for pagination.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int64 `json:"page"`
	PageSize int64 `json:"pageSize"`
}
