// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"sync"
)

// Client resolves base-table column schemas against a live PostgreSQL
// connection, caching results per unqualified table name (spec.md §4.1).
type Client struct {
	conn  *Conn
	cache *cache

	searchPathOnce sync.Once
	searchPath     []string
	searchPathErr  error
}

// NewClient builds a Client over an already-open connection.
func NewClient(conn *Conn) *Client {
	return &Client{conn: conn, cache: newCache()}
}

// searchPathSchemas returns the connection's effective search_path,
// expanded via current_schemas(true) exactly once per Client lifetime —
// the same one-shot cache spec.md §4.1 describes for this step.
func (c *Client) searchPathSchemas(ctx context.Context) ([]string, error) {
	c.searchPathOnce.Do(func() {
		rows, err := c.conn.QueryContext(ctx, `SELECT unnest(current_schemas(true))`)
		if err != nil {
			c.searchPathErr = err
			return
		}
		defer rows.Close()
		var schemas []string
		for rows.Next() {
			var s string
			if err := rows.Scan(&s); err != nil {
				c.searchPathErr = err
				return
			}
			schemas = append(schemas, s)
		}
		if err := rows.Err(); err != nil {
			c.searchPathErr = err
			return
		}
		c.searchPath = schemas
	})
	return c.searchPath, c.searchPathErr
}

// tablesNamed fetches every base table named `name` in any schema,
// caching the (possibly multi-schema) result set under that bare name —
// filtering by search path or by a specific schema qualifier happens in
// Columns.
func (c *Client) tablesNamed(ctx context.Context, name string) ([]DatabaseTable, error) {
	return c.cache.get(ctx, name, func(ctx context.Context) ([]DatabaseTable, error) {
		return c.fetchTablesNamed(ctx, name)
	})
}

// fetchTablesNamed runs the pg_attribute/pg_class/pg_namespace join query
// (spec.md §4.1) for every ordinary table named `name` in any schema,
// grouping the flat row set into one DatabaseTable per schema.
func (c *Client) fetchTablesNamed(ctx context.Context, name string) ([]DatabaseTable, error) {
	const q = `
		SELECT n.nspname, a.attname, a.attnotnull, a.atttypid, t.typname, a.attnum
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_type t ON t.oid = a.atttypid
		WHERE c.relname = $1
		  AND c.relkind = 'r'
		  AND NOT a.attisdropped
		ORDER BY n.nspname, a.attnum`

	rows, err := c.conn.QueryContext(ctx, q, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySchema := map[string]*DatabaseTable{}
	var order []string
	for rows.Next() {
		var schema, attname, typname string
		var notNull bool
		var typeOID uint32
		var attnum int16
		if err := rows.Scan(&schema, &attname, &notNull, &typeOID, &typname, &attnum); err != nil {
			return nil, err
		}
		tbl, ok := bySchema[schema]
		if !ok {
			tbl = &DatabaseTable{Schema: schema, Name: name}
			bySchema[schema] = tbl
			order = append(order, schema)
		}
		tbl.Columns = append(tbl.Columns, DatabaseColumn{
			Name:     attname,
			Nullable: !notNull,
			TypeOID:  typeOID,
			TypeName: typname,
			Hidden:   attnum < 0,
			AttNum:   attnum,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make([]DatabaseTable, 0, len(order))
	for _, s := range order {
		tables = append(tables, *bySchema[s])
	}
	return tables, nil
}

// Columns resolves schema and name (an unqualified or schema-qualified
// table reference) to its column list, per spec.md §4.1's resolution
// rules: an explicit schema must match exactly; an unqualified name must
// match exactly one schema on the search path.
func (c *Client) Columns(ctx context.Context, schema, name string) ([]DatabaseColumn, error) {
	tables, err := c.tablesNamed(ctx, name)
	if err != nil {
		return nil, err
	}

	if schema != "" {
		for _, t := range tables {
			if t.Schema == schema {
				return t.Columns, nil
			}
		}
		return nil, &SchemaTableNotFoundError{Schema: schema, Table: name}
	}

	searchPath, err := c.searchPathSchemas(ctx)
	if err != nil {
		return nil, err
	}
	onPath := make([]DatabaseTable, 0, len(tables))
	pathSet := make(map[string]bool, len(searchPath))
	for _, s := range searchPath {
		pathSet[s] = true
	}
	for _, t := range tables {
		if pathSet[t.Schema] {
			onPath = append(onPath, t)
		}
	}

	switch len(onPath) {
	case 0:
		return nil, &TableNotFoundError{Table: name}
	case 1:
		return onPath[0].Columns, nil
	default:
		schemas := make([]string, len(onPath))
		for i, t := range onPath {
			schemas[i] = t.Schema
		}
		return nil, &AmbiguousTableError{Table: name, Schemas: schemas}
	}
}
