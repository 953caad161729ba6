package commands

import (
	"fmt"
	"strconv"

	"athletrack-backend/lib/serviceutil"
	"athletrack-backend/services/rankings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsListCmd)
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manages the events the daily scrape tracks.",
}

var eventsAddCmd = &cobra.Command{
	Use:   "add <code> <name>",
	Short: "Registers an event code, e.g. `events add 670 Javelot`.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		code, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("event code must be a number", err)
		}

		database, store, err := openStore()
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		err = store.CreateEvent(cmd.Context(), rankings.Event{
			Code:   code,
			Name:   args[1],
			Active: true,
		})
		if err != nil {
			serviceutil.Fatal("failed to create event", err)
		}
		fmt.Printf("tracking event %d (%s)\n", code, args[1])
	},
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the active events.",
	Run: func(cmd *cobra.Command, args []string) {
		database, store, err := openStore()
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		events, err := store.ListActiveEvents(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list events", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Code", "Name"})
		for _, event := range events {
			t.AppendRow(table.Row{event.Code, event.Name})
		}
		t.Render()
	},
}
