package rankings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"athletrack-backend/lib/scrapers/athle"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/rankings")

// Service runs the scrape-diff-alert pipeline for one event+gender at a
// time: fetch the current rankings table, diff it against the latest
// stored snapshot, persist the new snapshot plus the resulting alerts,
// and log the run.
type Service struct {
	scraper   *athle.Client
	events    EventDirectory
	athletes  AthleteDirectory
	rankings  RankingStore
	alerts    AlertStore
	runlog    RunLog
	users     UserDirectory
	favorites FavoriteIndex
}

func NewService(scraper *athle.Client, store Store) Service {
	return Service{
		scraper:   scraper,
		events:    store,
		athletes:  store,
		rankings:  store,
		alerts:    store,
		runlog:    store,
		users:     store,
		favorites: store,
	}
}

type RunRequest struct {
	EventCode int
	// "M" or "F"
	Gender   string
	Year     int
	Category string
}

// Outcome is what every pipeline run produces, failed or not. Err is
// empty on success.
type Outcome struct {
	Success    bool
	EventName  string
	Gender     string
	RowCount   int
	AlertCount int
	Elapsed    time.Duration
	Err        string
}

// Run never returns an error: every failure mode is folded into the
// returned Outcome and, except for an unknown event code, a run log
// entry.
func (s Service) Run(ctx context.Context, req RunRequest) Outcome {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("event_code", req.EventCode),
		attribute.String("gender", req.Gender),
	)

	start := time.Now()

	event, found, err := s.events.GetEventByCode(ctx, req.EventCode)
	if err != nil {
		return s.fail(ctx, span, req, start, 0, err)
	}
	if !found {
		// fails before any network traffic, deliberately no run log
		// entry either
		slog.ErrorContext(ctx, "event not found", "event_code", req.EventCode)
		span.SetStatus(codes.Error, "event not found")
		return Outcome{
			Gender:  req.Gender,
			Elapsed: time.Since(start),
			Err:     fmt.Sprintf("event %d not found", req.EventCode),
		}
	}

	slog.InfoContext(ctx, "starting pipeline run",
		"event", event.Name, "event_code", event.Code, "gender", req.Gender)

	snapshot, err := s.scraper.FetchRankings(ctx, athle.Request{
		EventCode: req.EventCode,
		Gender:    req.Gender,
		Year:      req.Year,
		Category:  req.Category,
	})
	if err != nil {
		return s.fail(ctx, span, req, start, 0, err)
	}

	if len(snapshot.Rows) == 0 {
		// a missing table and a genuinely empty one look the same
		// here, both are a partial run
		slog.WarnContext(ctx, "no rankings data found",
			"event", event.Name, "gender", req.Gender)
		s.appendLog(ctx, req, StatusPartial, 0, time.Since(start), "no rankings data found")
		return Outcome{
			EventName: event.Name,
			Gender:    req.Gender,
			Elapsed:   time.Since(start),
			Err:       "no rankings data found",
		}
	}

	alerts, err := s.diffAndStage(ctx, snapshot)
	if err != nil {
		return s.fail(ctx, span, req, start, 0, err)
	}

	rowCount, err := s.rankings.BulkInsertSnapshot(ctx, snapshot)
	if err != nil {
		return s.fail(ctx, span, req, start, 0, err)
	}
	slog.InfoContext(ctx, "stored ranking snapshot", "rows", rowCount)

	if len(alerts) > 0 {
		if _, err := s.alerts.BulkInsertAlerts(ctx, alerts); err != nil {
			return s.fail(ctx, span, req, start, rowCount, err)
		}
		slog.InfoContext(ctx, "stored alerts", "alerts", len(alerts))
	}

	elapsed := time.Since(start)
	s.appendLog(ctx, req, StatusSuccess, rowCount, elapsed, "")

	return Outcome{
		Success:    true,
		EventName:  event.Name,
		Gender:     req.Gender,
		RowCount:   rowCount,
		AlertCount: len(alerts),
		Elapsed:    elapsed,
	}
}

// diffAndStage resolves athlete identities and evaluates the alert
// bands for every row against the previous snapshot's ranks.
func (s Service) diffAndStage(ctx context.Context, snapshot athle.Snapshot) ([]Alert, error) {
	prevCapture, prevRows, err := s.rankings.GetLatestSnapshot(ctx, snapshot.EventCode, snapshot.Gender)
	if err != nil {
		return nil, err
	}
	previousRanks := make(map[string]int, len(prevRows))
	for _, row := range prevRows {
		previousRanks[row.AthleteKey] = row.Rank
	}
	if !prevCapture.IsZero() {
		slog.DebugContext(ctx, "previous snapshot loaded",
			"captured_at", prevCapture, "rows", len(prevRows))
	}

	activeUsers, err := s.users.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	engine := AlertEngine{Users: activeUsers, Favorites: s.favorites}

	var alerts []Alert
	for _, row := range snapshot.Rows {
		athlete, err := s.athletes.GetOrCreateAthlete(ctx, row.AthleteKey, row.Name, snapshot.CapturedAt)
		if err != nil {
			return nil, err
		}

		var oldRank *int
		if prev, ok := previousRanks[row.AthleteKey]; ok {
			oldRank = &prev
		}

		rowAlerts, err := engine.Evaluate(ctx, athlete, oldRank, row.Rank, snapshot.EventCode, snapshot.Gender)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, rowAlerts...)
	}
	return alerts, nil
}

func (s Service) fail(ctx context.Context, span trace.Span, req RunRequest, start time.Time, rowCount int, err error) Outcome {
	elapsed := time.Since(start)
	slog.ErrorContext(ctx, "pipeline run failed",
		"event_code", req.EventCode, "gender", req.Gender, "err", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	s.appendLog(ctx, req, StatusError, rowCount, elapsed, err.Error())

	return Outcome{
		Gender:   req.Gender,
		RowCount: rowCount,
		Elapsed:  elapsed,
		Err:      err.Error(),
	}
}

// a run log append failure must not mask the run's own outcome
func (s Service) appendLog(ctx context.Context, req RunRequest, status RunStatus, rowCount int, elapsed time.Duration, errMsg string) {
	err := s.runlog.Append(ctx, RunLogEntry{
		EventCode: req.EventCode,
		Gender:    req.Gender,
		Status:    status,
		RowCount:  rowCount,
		Elapsed:   elapsed,
		ErrorMsg:  errMsg,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to append run log", "err", err)
	}
}
