package search

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

// ParamType defines how a search parameter is matched against its column.
type ParamType int

const (
	ParamToken     ParamType = iota // exact match on a code-like column
	ParamDate                       // supports prefixes (gt, lt, ge, le, eq)
	ParamString                     // case-insensitive prefix match
	ParamReference                  // exact match on a uuid column
	ParamNumber                     // supports prefixes (gt, lt, ge, le, eq)
)

// ParamConfig maps a query parameter to its database column.
type ParamConfig struct {
	Type   ParamType
	Column string
}

// Query builds SQL WHERE clauses from request search parameters.
// It encapsulates the common search pattern used across domain repositories.
type Query struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewQuery creates a new Query for the given table and columns.
func NewQuery(table, cols string) *Query {
	return &Query{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *Query) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// splitPrefix peels a comparison prefix (gt, ge, lt, le, eq) off a value.
func splitPrefix(value string) (op, rest string) {
	prefixes := map[string]string{"gt": ">", "ge": ">=", "lt": "<", "le": "<=", "eq": "="}
	if len(value) > 2 {
		if op, ok := prefixes[value[:2]]; ok {
			return op, value[2:]
		}
	}
	return "=", value
}

// AddDate adds a date clause with comparison prefix support.
func (q *Query) AddDate(column, value string) {
	op, rest := splitPrefix(value)
	q.where += fmt.Sprintf(" AND %s %s $%d", column, op, q.idx)
	q.args = append(q.args, rest)
	q.idx++
}

// AddNumber adds a numeric clause with comparison prefix support.
func (q *Query) AddNumber(column, value string) {
	op, rest := splitPrefix(value)
	q.where += fmt.Sprintf(" AND %s %s $%d", column, op, q.idx)
	q.args = append(q.args, rest)
	q.idx++
}

// AddString adds a case-insensitive prefix match clause.
func (q *Query) AddString(column, value string) {
	q.where += fmt.Sprintf(" AND %s ILIKE $%d", column, q.idx)
	q.args = append(q.args, value+"%")
	q.idx++
}

// AddExact adds an exact-match clause.
func (q *Query) AddExact(column, value string) {
	q.where += fmt.Sprintf(" AND %s = $%d", column, q.idx)
	q.args = append(q.args, value)
	q.idx++
}

// ApplyParam applies a single search parameter using the config.
func (q *Query) ApplyParam(config ParamConfig, value string) {
	switch config.Type {
	case ParamDate:
		q.AddDate(config.Column, value)
	case ParamNumber:
		q.AddNumber(config.Column, value)
	case ParamString:
		q.AddString(config.Column, value)
	default:
		q.AddExact(config.Column, value)
	}
}

// ApplyParams applies all matching search parameters from the given map.
func (q *Query) ApplyParams(params map[string]string, configs map[string]ParamConfig) {
	for name, value := range params {
		if config, ok := configs[name]; ok {
			q.ApplyParam(config, value)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Query) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// ApplySort processes the sort parameter and sets ORDER BY using config
// column mappings. The value is a comma-separated list of param names,
// optionally prefixed with - for DESC. Falls back to defaultOrder.
func (q *Query) ApplySort(sortParam, defaultOrder string, configs map[string]ParamConfig) {
	if sortParam == "" {
		q.orderBy = defaultOrder
		return
	}
	var parts []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		desc := false
		if strings.HasPrefix(field, "-") {
			desc = true
			field = field[1:]
		}
		if config, ok := configs[field]; ok {
			if desc {
				parts = append(parts, config.Column+" DESC")
			} else {
				parts = append(parts, config.Column+" ASC")
			}
		}
	}
	if len(parts) > 0 {
		q.orderBy = strings.Join(parts, ", ")
	} else {
		q.orderBy = defaultOrder
	}
}

// CountSQL returns the count query SQL.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *Query) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *Query) DataSQL(limit, offset int) string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *Query) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

// ExtractParams extracts search parameters from the query string, excluding
// control parameters (limit, offset, sort). Unknown params are included;
// the repo's ApplyParams will ignore ones not in its config.
func ExtractParams(c echo.Context) map[string]string {
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "limit", "offset", "sort":
			continue
		}
		params[k] = v[0]
	}
	return params
}
