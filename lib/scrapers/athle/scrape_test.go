package athle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"athletrack-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) string {
	data, err := os.ReadFile("testdata/bilans.html")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func testClient(t *testing.T, baseUrl string) *Client {
	delay, backoff := NoWait()
	client, err := NewClient(ClientOptions{
		BaseUrl:    baseUrl,
		Timeout:    time.Second * 5,
		MaxRetries: 3,
		Delay:      delay,
		Backoff:    backoff,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

var testRequest = Request{
	EventCode: 670,
	Gender:    "F",
	Year:      2026,
	Category:  "CA",
}

func TestFetchRankings(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	page := fixture(t)
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Write([]byte(page))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	snapshot, err := testClient(t, server.URL).FetchRankings(ctx, testRequest)
	require.NoError(t, err)

	require.Equal(t, 670, snapshot.EventCode)
	require.Equal(t, "F", snapshot.Gender)
	require.Len(t, snapshot.Rows, 4)

	ranks := make([]int, len(snapshot.Rows))
	for i, row := range snapshot.Rows {
		ranks[i] = row.Rank
	}
	// the "-" row ties with the rank above it, the detail row is dropped
	require.Equal(t, []int{1, 2, 2, 4}, ranks)

	require.Equal(t, "dupont_marie", snapshot.Rows[0].AthleteKey)
	require.InDelta(t, 58.14, snapshot.Rows[0].PerformanceNumeric, 1e-9)
	require.Equal(t, "bernard_chlo_", snapshot.Rows[2].AthleteKey)

	query := gotQuery.Load().(string)
	require.Contains(t, query, "frmbase=bilans")
	require.Contains(t, query, "frmepreuve=670")
	require.Contains(t, query, "frmsexe=F")
	require.Contains(t, query, "frmannee=2026")
	require.Contains(t, query, "frmcategorie=CA")
	require.Contains(t, query, "frmvent=VR")
}

func TestFetchRankingsRetriesStatusError(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).FetchRankings(context.Background(), testRequest)

	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	require.Equal(t, KindStatusError, scrapeErr.Kind)
	require.Equal(t, 3, scrapeErr.Attempts)
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchRankingsRecoversAfterFailure(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	page := fixture(t)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	snapshot, err := testClient(t, server.URL).FetchRankings(context.Background(), testRequest)
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 4)
	// one success short-circuits the loop
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchRankingsTimeout(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	delay, backoff := NoWait()
	client, err := NewClient(ClientOptions{
		BaseUrl:    server.URL,
		Timeout:    time.Millisecond * 50,
		MaxRetries: 2,
		Delay:      delay,
		Backoff:    backoff,
	})
	require.NoError(t, err)

	_, err = client.FetchRankings(context.Background(), testRequest)

	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	require.Equal(t, KindTimeout, scrapeErr.Kind)
}

func TestFetchRankingsMissingTable(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Aucun bilan disponible</p></body></html>"))
	}))
	defer server.Close()

	snapshot, err := testClient(t, server.URL).FetchRankings(context.Background(), testRequest)
	require.NoError(t, err)
	require.Empty(t, snapshot.Rows)
}

func TestFetchRankingsFallbackTableClass(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "scrapers/athle"})
	defer cleanup()

	// same table, located only by class
	page := strings.Replace(fixture(t), `id="ctnBilans" `, "", 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	snapshot, err := testClient(t, server.URL).FetchRankings(context.Background(), testRequest)
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 4)
}

func TestBackoffPolicies(t *testing.T) {
	backoff := ExponentialBackoff()
	require.Equal(t, time.Second*2, backoff(1))
	require.Equal(t, time.Second*4, backoff(2))
	require.Equal(t, time.Second*8, backoff(3))

	delay := UniformDelay(time.Second*2, time.Second*3)
	for i := 0; i < 20; i++ {
		d := delay()
		require.GreaterOrEqual(t, d, time.Second*2)
		require.LessOrEqual(t, d, time.Second*3)
	}
}

func TestScrapeErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ScrapeError{Kind: KindOther, Attempts: 3, Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "other")
}
