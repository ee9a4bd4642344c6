// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nullaware/pgtyper/cmd/flags"
	"github.com/nullaware/pgtyper/pkg/catalog"
)

// Version is the pgtyper version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("PGTYPER")
	viper.AutomaticEnv()

	flags.DatabaseFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "pgtyper",
	SilenceUsage: true,
	Version:      Version,
}

// NewCatalogClient opens a pool against the configured database URL, sized
// by --pool-size, and wraps it in a schema client shared across every file
// an invocation analyzes.
func NewCatalogClient() (*sql.DB, *catalog.Client, error) {
	db, err := sql.Open("postgres", flags.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(flags.PoolSize())

	if err := db.Ping(); err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", formatPqError(err))
	}

	return db, catalog.NewClient(&catalog.Conn{DB: db}), nil
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(analyzeCmd())

	return rootCmd.Execute()
}
