package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"athletrack-backend/lib/configuration"
	"athletrack-backend/services/rankings"
	"athletrack-backend/services/rankings/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var dbPath *string

var rootCmd = &cobra.Command{
	Use:   "athletrack-cli",
	Short: "athletrack-cli manages tracked events and triggers manual ranking scrapes.",
}

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "athletrack.db", "The database holding events, rankings and alerts.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*sql.DB, rankings.Store, error) {
	database, err := configuration.Storage{File: *dbPath}.OpenDB(db.Schema)
	if err != nil {
		return nil, rankings.Store{}, err
	}
	return database, rankings.NewStore(database), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
