package domain

import (
	"fmt"
	"net/url"
	"sort"
)

// Query parameter names understood by the microCMS content API.
const (
	QueryQ       = "q"
	QueryLimit   = "limit"
	QueryOffset  = "offset"
	QueryFields  = "fields"
	QueryOrders  = "orders"
	QueryFilters = "filters"
	QueryDepth   = "depth"
)

// Query holds the query parameters sent upstream. An optional parameter is
// only sent when the caller supplied a non-zero value; absent, empty and
// zero all leave the key out.
type Query map[string]any

// SetString sets key when v is non-nil and not empty.
func (q Query) SetString(key string, v *string) {
	if v != nil && *v != "" {
		q[key] = *v
	}
}

// SetInt sets key when v is non-nil and not zero.
func (q Query) SetInt(key string, v *int) {
	if v != nil && *v != 0 {
		q[key] = *v
	}
}

// Keys returns the parameter names in sorted order.
func (q Query) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values encodes the query for an HTTP request.
func (q Query) Values() url.Values {
	values := make(url.Values, len(q))
	for k, v := range q {
		values.Set(k, fmt.Sprint(v))
	}
	return values
}
