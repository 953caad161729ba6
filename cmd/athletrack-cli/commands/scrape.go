package commands

import (
	"fmt"
	"time"

	"athletrack-backend/lib/scrapers/athle"
	"athletrack-backend/lib/serviceutil"
	"athletrack-backend/lib/timezone"
	"athletrack-backend/services/rankings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeEvent    *int
	scrapeGender   *string
	scrapeYear     *int
	scrapeCategory *string
	scrapeTop      *int
)

func init() {
	scrapeEvent = scrapeCmd.Flags().Int("event", 0, "The event code to scrape, e.g. 670 for javelin.")
	scrapeGender = scrapeCmd.Flags().String("gender", "F", "M or F.")
	scrapeYear = scrapeCmd.Flags().Int("year", timezone.Now().Year(), "The season to scrape rankings for.")
	scrapeCategory = scrapeCmd.Flags().String("category", "CA", "The age category code, e.g. CA for cadets.")
	scrapeTop = scrapeCmd.Flags().Int("top", 10, "How many rows of the stored snapshot to print.")
	scrapeCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --event <code> [--gender M|F] [--year <yyyy>] [--category <code>]",
	Short: "Runs the scrape-diff-alert pipeline once for a single event.",
	Run: func(cmd *cobra.Command, args []string) {
		database, store, err := openStore()
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		client, err := athle.NewClient(athle.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize scraper client", err)
		}
		service := rankings.NewService(client, store)

		outcome := service.Run(cmd.Context(), rankings.RunRequest{
			EventCode: *scrapeEvent,
			Gender:    *scrapeGender,
			Year:      *scrapeYear,
			Category:  *scrapeCategory,
		})
		if !outcome.Success {
			serviceutil.Fatal("pipeline run failed", fmt.Errorf("%s", outcome.Err))
		}

		fmt.Printf(
			"%s (%s): %d rows, %d alerts in %.1fs\n",
			outcome.EventName, outcome.Gender,
			outcome.RowCount, outcome.AlertCount, outcome.Elapsed.Seconds(),
		)

		capturedAt, rows, err := store.GetLatestSnapshot(cmd.Context(), *scrapeEvent, *scrapeGender)
		if err != nil {
			serviceutil.Fatal("failed to load stored snapshot", err)
		}

		t := newTable()
		t.SetTitle(fmt.Sprintf("captured %s", capturedAt.Format(time.DateTime)))
		t.AppendHeader(table.Row{"Rank", "Athlete", "Performance", "Club"})
		for i, row := range rows {
			if i >= *scrapeTop {
				break
			}
			t.AppendRow(table.Row{row.Rank, row.AthleteKey, row.Performance, row.Club})
		}
		t.Render()
	},
}
