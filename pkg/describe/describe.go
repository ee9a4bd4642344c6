// SPDX-License-Identifier: Apache-2.0

// Package describe runs the PREPARE/describe step of the pipeline
// (spec.md §2 step 3): it asks PostgreSQL itself what a statement's
// parameter and output column types are, so the inference engine never has
// to reimplement Postgres's own type resolution rules.
//
// database/sql has no public API for the wire protocol's Describe message
// (parse + describe, no bind/execute) that github.com/lib/pq's driver
// issues internally when preparing a statement — Go only exposes column
// metadata once a query actually executes. To get that metadata for
// statements that mutate data (INSERT/UPDATE/DELETE) without ever
// persisting a side effect, Statement runs the whole probe inside a
// transaction that is always rolled back, never committed. This is a
// deliberate, documented limitation: it burns any non-transactional state
// the statement touches, most commonly a SERIAL/IDENTITY column's
// sequence value, exactly once per analysis (see DESIGN.md).
package describe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Param is one parameter's catalog type, 1-based in declaration order.
type Param struct {
	OID      uint32
	TypeName string
}

// Column is one output column's catalog-reported name and type.
type Column struct {
	Name     string
	OID      uint32
	TypeName string
}

// Result is the raw output of describing one preprocessed statement.
type Result struct {
	Params  []Param
	Columns []Column
}

// Statement describes sql (already preprocessed to use only positional
// `$n` placeholders) against db, returning its parameter and output column
// types as PostgreSQL itself reports them.
func Statement(ctx context.Context, db *sql.DB, sql string) (Result, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return Result{}, err
	}
	defer conn.Close()

	name := "pgtyper_" + strings.ReplaceAll(uuid.NewString(), "-", "_")

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("PREPARE %s AS %s", name, sql)); err != nil {
		return Result{}, fmt.Errorf("describe: prepare: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "DEALLOCATE "+name)
	}()

	params, err := paramTypes(ctx, conn, name)
	if err != nil {
		return Result{}, err
	}

	columns, err := columnTypes(ctx, conn, name, len(params))
	if err != nil {
		return Result{}, err
	}

	return Result{Params: params, Columns: columns}, nil
}

func paramTypes(ctx context.Context, conn *sql.Conn, name string) ([]Param, error) {
	var oids []int64
	row := conn.QueryRowContext(ctx,
		`SELECT parameter_types::oid[] FROM pg_prepared_statements WHERE name = $1`, name)
	if err := row.Scan(pq.Array(&oids)); err != nil {
		return nil, fmt.Errorf("describe: reading parameter_types: %w", err)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	names, err := typeNames(ctx, conn, oids)
	if err != nil {
		return nil, err
	}

	params := make([]Param, len(oids))
	for i, oid := range oids {
		params[i] = Param{OID: uint32(oid), TypeName: names[uint32(oid)]}
	}
	return params, nil
}

func typeNames(ctx context.Context, conn *sql.Conn, oids []int64) (map[uint32]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT oid, typname FROM pg_type WHERE oid = ANY($1::oid[])`, pq.Array(oids))
	if err != nil {
		return nil, fmt.Errorf("describe: reading pg_type: %w", err)
	}
	defer rows.Close()

	names := make(map[uint32]string, len(oids))
	for rows.Next() {
		var oid uint32
		var name string
		if err := rows.Scan(&oid, &name); err != nil {
			return nil, err
		}
		names[oid] = name
	}
	return names, rows.Err()
}

// columnTypes executes the prepared statement with every parameter bound
// to NULL, inside a transaction opened on conn that is always rolled back
// afterwards, whatever kind of statement it is — see the package doc
// comment for why.
func columnTypes(ctx context.Context, conn *sql.Conn, name string, nparams int) ([]Column, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("describe: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := make([]string, nparams)
	for i := range args {
		args[i] = "NULL"
	}
	execSQL := fmt.Sprintf("EXECUTE %s", name)
	if nparams > 0 {
		execSQL += "(" + strings.Join(args, ", ") + ")"
	}

	rows, err := tx.QueryContext(ctx, execSQL)
	if err != nil {
		return nil, fmt.Errorf("describe: execute: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("describe: column types: %w", err)
	}

	columns := make([]Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = Column{Name: ct.Name(), TypeName: strings.ToLower(ct.DatabaseTypeName())}
	}
	return columns, nil
}
