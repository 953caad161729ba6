package rankings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"athletrack-backend/lib/scrapers/athle"
	"athletrack-backend/lib/testutil"
	"athletrack-backend/lib/timezone"
	"athletrack-backend/services/rankings/db"

	"github.com/stretchr/testify/require"
)

// rankingsPage builds a bilans results page: four header rows the
// extractor must skip, then one row per entry.
func rankingsPage(rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="ctnBilans" class="reveal-table">`)
	b.WriteString(`<tr><td colspan="9">Bilans Javelot CA F 2026</td></tr>`)
	b.WriteString(`<tr><td>filtres</td></tr>`)
	b.WriteString(`<tr><td>&nbsp;</td></tr>`)
	b.WriteString(`<tr><td>Rang</td><td>Perf.</td><td>Ath.</td><td>Club</td><td>Lg</td><td>Dp</td><td>Infos</td><td>Date</td><td>Lieu</td></tr>`)
	for _, cells := range rows {
		b.WriteString("<tr>")
		for _, cell := range cells {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func firstPage() string {
	return rankingsPage([][]string{
		{"1", "52m30", "DUPONT Marie", "US Creteil", "I-F", "094", "SE", "14/06/26", "Creteil"},
		{"2", "49m12", "MARTIN Lucie", "CA Balma", "OCC", "031", "JU", "31/05/26", "Albi"},
		{"3", "47m88", "BERNARD Chloe", "EA Rennes", "BRE", "035", "ES", "07/06/26", "Rennes"},
	})
}

// MARTIN overtakes DUPONT; BERNARD unchanged.
func secondPage() string {
	return rankingsPage([][]string{
		{"1", "53m02", "MARTIN Lucie", "CA Balma", "OCC", "031", "JU", "21/06/26", "Toulouse"},
		{"2", "52m30", "DUPONT Marie", "US Creteil", "I-F", "094", "SE", "14/06/26", "Creteil"},
		{"3", "47m88", "BERNARD Chloe", "EA Rennes", "BRE", "035", "ES", "07/06/26", "Rennes"},
	})
}

type pipelineFixture struct {
	service Service
	store   Store
	qry     *db.Queries
	page    *atomic.Value
}

func setupPipeline(t *testing.T) pipelineFixture {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/rankings",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	var page atomic.Value
	page.Store(firstPage())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page.Load().(string)))
	}))
	t.Cleanup(server.Close)

	delay, backoff := athle.NoWait()
	client, err := athle.NewClient(athle.ClientOptions{
		BaseUrl:    server.URL,
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Delay:      delay,
		Backoff:    backoff,
	})
	require.NoError(t, err)

	store := NewStore(setup.DB)
	return pipelineFixture{
		service: NewService(client, store),
		store:   store,
		qry:     db.New(setup.DB),
		page:    &page,
	}
}

func (f pipelineFixture) seed(t *testing.T, ctx context.Context) (coachId int64) {
	require.NoError(t, f.store.CreateEvent(ctx, Event{Code: 670, Name: "Javelot", Active: true}))
	require.NoError(t, f.store.CreateEvent(ctx, Event{Code: 90, Name: "100m", Active: false}))

	now := timezone.Now().Unix()
	coachId, err := f.qry.CreateUser(ctx, db.CreateUserParams{Email: "coach@example.com", Active: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = f.qry.CreateUser(ctx, db.CreateUserParams{Email: "parent@example.com", Active: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = f.qry.CreateUser(ctx, db.CreateUserParams{Email: "former@example.com", Active: false, CreatedAt: now})
	require.NoError(t, err)
	return coachId
}

var runRequest = RunRequest{EventCode: 670, Gender: "F", Year: 2026, Category: "CA"}

func TestRunFirstSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	f := setupPipeline(t)
	f.seed(t, ctx)

	outcome := f.service.Run(ctx, runRequest)

	require.True(t, outcome.Success)
	require.Empty(t, outcome.Err)
	require.Equal(t, "Javelot", outcome.EventName)
	require.Equal(t, 3, outcome.RowCount)
	// 3 new podium athletes, fanned out to the 2 active users
	require.Equal(t, 6, outcome.AlertCount)

	logs, err := f.qry.ListScrapeLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, string(StatusSuccess), logs[0].Status)
	require.Equal(t, int64(3), logs[0].RowCount)

	capturedAt, rows, err := f.store.GetLatestSnapshot(ctx, 670, "F")
	require.NoError(t, err)
	require.False(t, capturedAt.IsZero())
	require.Len(t, rows, 3)
	require.Equal(t, "dupont_marie", rows[0].AthleteKey)
	require.InDelta(t, 52.30, rows[0].PerformanceNumeric, 1e-9)
}

func TestRunUnchangedSnapshotIsQuiet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	f := setupPipeline(t)
	f.seed(t, ctx)

	first := f.service.Run(ctx, runRequest)
	require.True(t, first.Success)

	second := f.service.Run(ctx, runRequest)
	require.True(t, second.Success)
	require.Equal(t, 3, second.RowCount)
	require.Zero(t, second.AlertCount)
}

func TestRunRankChangeAlertsFavorites(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	f := setupPipeline(t)
	coachId := f.seed(t, ctx)

	require.NoError(t, f.qry.CreateFavorite(ctx, db.CreateFavoriteParams{
		UserID:     coachId,
		AthleteKey: "martin_lucie",
		EventCode:  670,
		AddedAt:    timezone.Now().Unix(),
	}))

	first := f.service.Run(ctx, runRequest)
	require.True(t, first.Success)

	f.page.Store(secondPage())
	second := f.service.Run(ctx, runRequest)
	require.True(t, second.Success)
	// everyone stayed on the podium, only the favorite movement fires
	require.Equal(t, 1, second.AlertCount)

	alerts, err := f.qry.ListAlertsForUser(ctx, coachId)
	require.NoError(t, err)

	var favoriteAlerts int
	for _, alert := range alerts {
		if alert.Title == "Favorite up: MARTIN Lucie" {
			favoriteAlerts++
			require.Equal(t, "MARTIN Lucie moved from rank 2 to rank 1", alert.Message)
		}
	}
	require.Equal(t, 1, favoriteAlerts)
}

func TestRunEmptyPageIsPartial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	f := setupPipeline(t)
	f.seed(t, ctx)

	f.page.Store("<html><body><p>aucun resultat</p></body></html>")
	outcome := f.service.Run(ctx, runRequest)

	require.False(t, outcome.Success)
	require.Equal(t, "no rankings data found", outcome.Err)
	require.Zero(t, outcome.RowCount)

	logs, err := f.qry.ListScrapeLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, string(StatusPartial), logs[0].Status)
}

func TestRunUnknownEventSkipsRunLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	f := setupPipeline(t)
	f.seed(t, ctx)

	outcome := f.service.Run(ctx, RunRequest{EventCode: 999, Gender: "F", Year: 2026, Category: "CA"})

	require.False(t, outcome.Success)
	require.Contains(t, outcome.Err, "event 999 not found")

	// nothing was fetched, nothing belongs in the run log
	logs, err := f.qry.ListScrapeLogs(ctx)
	require.NoError(t, err)
	require.Empty(t, logs)
}
