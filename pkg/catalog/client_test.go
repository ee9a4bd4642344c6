// SPDX-License-Identifier: Apache-2.0

package catalog_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullaware/pgtyper/pkg/catalog"
	"github.com/nullaware/pgtyper/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func newClient(t *testing.T, db *sql.DB) *catalog.Client {
	t.Helper()
	return catalog.NewClient(&catalog.Conn{DB: db})
}

// userColumns drops the hidden system columns (tableoid, ctid, ...) that
// Columns reports alongside the declared ones.
func userColumns(cols []catalog.DatabaseColumn) []catalog.DatabaseColumn {
	var out []catalog.DatabaseColumn
	for _, c := range cols {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

func TestColumnsResolvesUnqualifiedTable(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE TABLE users (id int not null, name text, bio text)`)
		require.NoError(t, err)

		client := newClient(t, db)
		cols, err := client.Columns(ctx, "", "users")
		require.NoError(t, err)
		visible := userColumns(cols)
		require.Len(t, visible, 3)
		assert.Equal(t, "id", visible[0].Name)
		assert.False(t, visible[0].Nullable)
		assert.Equal(t, "name", visible[1].Name)
		assert.True(t, visible[1].Nullable)
	})
}

func TestColumnsTableNotFound(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		client := newClient(t, db)
		_, err := client.Columns(context.Background(), "", "does_not_exist")
		var notFound *catalog.TableNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestColumnsSchemaQualified(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE SCHEMA other`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE other.widgets (id int not null)`)
		require.NoError(t, err)

		client := newClient(t, db)
		cols, err := client.Columns(ctx, "other", "widgets")
		require.NoError(t, err)
		require.Len(t, userColumns(cols), 1)

		_, err = client.Columns(ctx, "nosuch", "widgets")
		var schemaNotFound *catalog.SchemaTableNotFoundError
		assert.ErrorAs(t, err, &schemaNotFound)
	})
}

func TestColumnsAmbiguousAcrossSchemas(t *testing.T) {
	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		// A single connection ensures the session-level SET search_path
		// below applies to the same backend the client later queries
		// against, since database/sql may otherwise route queries across
		// distinct pooled connections.
		db.SetMaxOpenConns(1)

		ctx := context.Background()
		_, err := db.ExecContext(ctx, `CREATE SCHEMA extra`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE public.things (id int)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE extra.things (id int)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `SET search_path = public, extra`)
		require.NoError(t, err)

		client := newClient(t, db)
		_, err = client.Columns(ctx, "", "things")
		var ambiguous *catalog.AmbiguousTableError
		assert.ErrorAs(t, err, &ambiguous)
	})
}
