// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the schema client described by spec.md §4.1:
// a cached, single-flight lookup of a base table's columns from PostgreSQL's
// system catalogs.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

const (
	maxBackoffDuration = 30 * time.Second
	backoffInterval    = 250 * time.Millisecond
)

// retryableErrorCodes are the Postgres error classes worth retrying for a
// read-only catalog/describe workload: connection establishment failures
// and server-side unavailability, not application errors like a bad
// statement. Adapted from pkg/db.RDB's single lock_timeout-code retry to
// this package's wider set of transient-connection codes.
var retryableErrorCodes = map[pq.ErrorCode]bool{
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
	"08000": true, // connection_exception
	"08006": true, // connection_failure
	"08003": true, // connection_does_not_exist
}

// Conn wraps a *sql.DB, retrying queries with jittered exponential backoff
// on transient connection errors.
type Conn struct {
	DB *sql.DB
}

// QueryContext wraps sql.DB.QueryContext, retrying on transient errors.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		rows, err := c.DB.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return nil, err
		}
	}
}

// PrepareContext wraps sql.DB.PrepareContext, retrying on transient errors.
// Statement-level errors (bad SQL, unknown table) are never retryable and
// are returned immediately.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		stmt, err := c.DB.PrepareContext(ctx, query)
		if err == nil {
			return stmt, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) Close() error {
	return c.DB.Close()
}

func isRetryable(err error) bool {
	pqErr := &pq.Error{}
	return errors.As(err, &pqErr) && retryableErrorCodes[pqErr.Code]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
