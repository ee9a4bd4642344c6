// SPDX-License-Identifier: Apache-2.0

package infer_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullaware/pgtyper/pkg/catalog"
	"github.com/nullaware/pgtyper/pkg/infer"
	"github.com/nullaware/pgtyper/pkg/testutils"
	"github.com/nullaware/pgtyper/pkg/types"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func analyze(t *testing.T, db *sql.DB, sql string) types.StatementDescription {
	t.Helper()
	client := catalog.NewClient(&catalog.Conn{DB: db})
	return infer.Analyze(context.Background(), db, client, sql)
}

func TestAnalyzeSelectLiteral(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		desc := analyze(t, db, `SELECT 1`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		assert.Equal(t, types.RowCountOne, desc.RowCount)
		require.Len(t, desc.Columns, 1)
		assert.False(t, desc.Columns[0].Type.Nullable)
	})
}

func TestAnalyzeLeftJoinOnPromotesRightOnly(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE people (id int not null, name text not null)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE pets (id int not null, owner_id int not null, name text not null)`)
		require.NoError(t, err)

		desc := analyze(t, db, `SELECT people.id, pets.name AS pet_name FROM people LEFT JOIN pets ON pets.owner_id = people.id`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Columns, 2)
		assert.False(t, desc.Columns[0].Type.Nullable, "left side of a LEFT JOIN stays non-null")
		assert.True(t, desc.Columns[1].Type.Nullable, "right side of a LEFT JOIN is promoted to nullable")
	})
}

func TestAnalyzeJoinUsingKeepsKeyNonNull(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE a (id int not null, val text)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE b (id int not null, other text)`)
		require.NoError(t, err)

		desc := analyze(t, db, `SELECT id, val, other FROM a LEFT JOIN b USING (id)`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Columns, 3)
		assert.False(t, desc.Columns[0].Type.Nullable, "USING key stays non-null even though the right side of the join is promoted")
		assert.True(t, desc.Columns[1].Type.Nullable)
		assert.True(t, desc.Columns[2].Type.Nullable, "right side's non-key column is promoted nullable")
	})
}

func TestAnalyzeInsertParamNullability(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE widgets (id serial primary key, name text not null, note text)`)
		require.NoError(t, err)

		desc := analyze(t, db, `INSERT INTO widgets (name, note) VALUES ($1, $2)`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Params, 2)
		assert.False(t, desc.Params[0].Type.Nullable, "name is NOT NULL")
		assert.True(t, desc.Params[1].Type.Nullable, "note is nullable")
	})
}

func TestAnalyzeUpdateParamNullabilityIgnoresConstantAssignment(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE accounts (id int not null, balance int not null, note text)`)
		require.NoError(t, err)

		desc := analyze(t, db, `UPDATE accounts SET balance = 0, note = $1 WHERE id = $2`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Params, 2)
		assert.True(t, desc.Params[0].Type.Nullable, "note is nullable")
		assert.False(t, desc.Params[1].Type.Nullable, "id is NOT NULL and was never written through a param")
	})
}

func TestAnalyzeCoalesceIsNeverNull(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE items (id int not null, label text)`)
		require.NoError(t, err)

		desc := analyze(t, db, `SELECT coalesce(label, 'n/a') AS label FROM items`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Columns, 1)
		assert.False(t, desc.Columns[0].Type.Nullable)
	})
}

func TestAnalyzeCTEReferencesBaseTable(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE person (id int not null, name text not null, nickname text)`)
		require.NoError(t, err)

		desc := analyze(t, db, `
			WITH named AS (SELECT id, name, nickname FROM person)
			SELECT id, name, nickname FROM named`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		require.Len(t, desc.Columns, 3)
		assert.False(t, desc.Columns[0].Type.Nullable)
		assert.False(t, desc.Columns[1].Type.Nullable)
		assert.True(t, desc.Columns[2].Type.Nullable)
	})
}

func TestAnalyzeDeleteWithoutReturningIsZeroRows(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE items (id int not null)`)
		require.NoError(t, err)

		desc := analyze(t, db, `DELETE FROM items WHERE id = $1`)
		require.True(t, desc.Status.Success(), desc.Status.Error)
		assert.Equal(t, types.RowCountZero, desc.RowCount)
		assert.Empty(t, desc.Columns)
	})
}

func TestAnalyzeMixedPlaceholderStylesFailsBeforeDescribe(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		desc := analyze(t, db, `SELECT * FROM items WHERE id = $1 AND name = :name`)
		assert.False(t, desc.Status.Success())
		assert.Empty(t, desc.Params)
		assert.Empty(t, desc.Columns)
	})
}
