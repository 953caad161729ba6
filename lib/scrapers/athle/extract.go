package athle

import (
	"context"
	"log/slog"
	"time"

	"athletrack-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// the results table carries a stable element id; older renderings of
// the site only carry a class
const tableId = "ctnBilans"
const fallbackTableClass = "reveal-table"

// the table starts with banner/filter rows, the column header sits on
// the 4th; data rows begin after this prefix
const headerRowCount = 4

// extractSnapshot locates the results table and parses its data rows.
// A page without any recognizable table degrades to an empty snapshot.
func extractSnapshot(ctx context.Context, doc *goquery.Document, req Request, capturedAt time.Time) Snapshot {
	snapshot := Snapshot{
		CapturedAt: capturedAt,
		EventCode:  req.EventCode,
		Gender:     req.Gender,
	}

	table := doc.Find("table#" + tableId).First()
	if table.Length() == 0 {
		slog.WarnContext(ctx, "no results table found by id",
			"id", tableId, "tables_on_page", doc.Find("table").Length())

		table = doc.Find("table." + fallbackTableClass).First()
		if table.Length() == 0 {
			slog.ErrorContext(ctx, "no suitable results table found")
			return snapshot
		}
		slog.InfoContext(ctx, "using fallback table selector", "class", fallbackTableClass)
	}

	lastValidRank := 0
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i < headerRowCount {
			return
		}

		cells := htmlutil.CellTexts(tr)
		row, nextValidRank, ok := ParseRow(cells, lastValidRank, capturedAt)
		lastValidRank = nextValidRank
		if !ok {
			slog.DebugContext(ctx, "skipping non-ranking row", "row_index", i, "cells", len(cells))
			return
		}
		snapshot.Rows = append(snapshot.Rows, row)
	})

	return snapshot
}
