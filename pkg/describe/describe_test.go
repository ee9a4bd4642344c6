// SPDX-License-Identifier: Apache-2.0

package describe_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullaware/pgtyper/pkg/describe"
	"github.com/nullaware/pgtyper/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestStatementSelectParamsAndColumns(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE users (id int not null, name text)`)
		require.NoError(t, err)

		res, err := describe.Statement(ctx, db, `SELECT id, name FROM users WHERE id = $1`)
		require.NoError(t, err)

		require.Len(t, res.Params, 1)
		assert.Equal(t, "int4", res.Params[0].TypeName)

		require.Len(t, res.Columns, 2)
		assert.Equal(t, "id", res.Columns[0].Name)
		assert.Equal(t, "name", res.Columns[1].Name)
	})
}

func TestStatementInsertReturningDoesNotPersist(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE widgets (id serial primary key, name text not null)`)
		require.NoError(t, err)

		res, err := describe.Statement(ctx, db,
			`INSERT INTO widgets (name) VALUES ($1) RETURNING id, name`)
		require.NoError(t, err)

		require.Len(t, res.Params, 1)
		require.Len(t, res.Columns, 2)
		assert.Equal(t, "id", res.Columns[0].Name)
		assert.Equal(t, "name", res.Columns[1].Name)

		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM widgets`).Scan(&count))
		assert.Equal(t, 0, count, "describing an INSERT must never persist rows")
	})
}

func TestStatementInsertWithoutReturningHasNoColumns(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE widgets (id serial primary key, name text not null)`)
		require.NoError(t, err)

		res, err := describe.Statement(ctx, db, `INSERT INTO widgets (name) VALUES ($1)`)
		require.NoError(t, err)

		require.Len(t, res.Params, 1)
		assert.Len(t, res.Columns, 0)
	})
}
