package rankings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"athletrack-backend/lib/scrapers/athle"
	"athletrack-backend/lib/timezone"
	"athletrack-backend/services/rankings/db"
)

// Store implements every collaborator contract on a single sqlite/libsql
// database. Bulk inserts own their transaction so a failure partway
// through never leaves a half-written snapshot behind.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) GetEventByCode(ctx context.Context, code int) (Event, bool, error) {
	row, err := s.qry.GetEventByCode(ctx, int64(code))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}
	return Event{Code: int(row.Code), Name: row.Name, Active: row.Active}, true, nil
}

func (s Store) ListActiveEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.qry.ListActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(rows))
	for i, row := range rows {
		events[i] = Event{Code: int(row.Code), Name: row.Name, Active: row.Active}
	}
	return events, nil
}

func (s Store) CreateEvent(ctx context.Context, event Event) error {
	return s.qry.CreateEvent(ctx, db.CreateEventParams{
		Code:      int64(event.Code),
		Name:      event.Name,
		Active:    event.Active,
		CreatedAt: timezone.Now().Unix(),
	})
}

func (s Store) GetOrCreateAthlete(ctx context.Context, key, name string, firstSeen time.Time) (Athlete, error) {
	err := s.qry.CreateAthlete(ctx, db.CreateAthleteParams{
		AthleteKey: key,
		Name:       name,
		FirstSeen:  firstSeen.Unix(),
	})
	if err != nil {
		return Athlete{}, err
	}
	row, err := s.qry.GetAthlete(ctx, key)
	if err != nil {
		return Athlete{}, err
	}
	return Athlete{
		Key:       row.AthleteKey,
		Name:      row.Name,
		FirstSeen: time.Unix(row.FirstSeen, 0).In(timezone.Location),
	}, nil
}

func (s Store) GetLatestSnapshot(ctx context.Context, eventCode int, gender string) (time.Time, []athle.RankingRow, error) {
	capturedAt, ok, err := s.qry.GetLatestCaptureTime(ctx, db.LatestCaptureParams{
		EventCode: int64(eventCode),
		Gender:    gender,
	})
	if err != nil {
		return time.Time{}, nil, err
	}
	if !ok {
		return time.Time{}, nil, nil
	}

	stored, err := s.qry.ListRankingsAt(ctx, db.ListRankingsAtParams{
		EventCode:  int64(eventCode),
		Gender:     gender,
		CapturedAt: capturedAt,
	})
	if err != nil {
		return time.Time{}, nil, err
	}

	rows := make([]athle.RankingRow, len(stored))
	for i, r := range stored {
		rows[i] = athle.RankingRow{
			Rank:               int(r.Rank),
			AthleteKey:         r.AthleteKey,
			Performance:        r.Performance,
			PerformanceNumeric: r.PerformanceNumeric,
			Club:               r.Club.String,
			League:             r.League.String,
			Department:         r.Department.String,
			Venue:              r.Venue.String,
		}
		if r.RecordDate.Valid {
			rows[i].RecordDate = time.Unix(r.RecordDate.Int64, 0).In(timezone.Location)
		}
	}
	return time.Unix(capturedAt, 0).In(timezone.Location), rows, nil
}

func (s Store) BulkInsertSnapshot(ctx context.Context, snapshot athle.Snapshot) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, row := range snapshot.Rows {
		err := txqry.CreateRanking(ctx, db.CreateRankingParams{
			CapturedAt:         snapshot.CapturedAt.Unix(),
			EventCode:          int64(snapshot.EventCode),
			Gender:             snapshot.Gender,
			Rank:               int64(row.Rank),
			AthleteKey:         row.AthleteKey,
			Performance:        row.Performance,
			PerformanceNumeric: row.PerformanceNumeric,
			Club:               nullString(row.Club),
			League:             nullString(row.League),
			Department:         nullString(row.Department),
			RecordDate:         nullTime(row.RecordDate),
			Venue:              nullString(row.Venue),
		})
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(snapshot.Rows), nil
}

func (s Store) BulkInsertAlerts(ctx context.Context, alerts []Alert) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	createdAt := timezone.Now().Unix()
	for _, alert := range alerts {
		err := txqry.CreateAlert(ctx, db.CreateAlertParams{
			UserID:     alert.UserId,
			CreatedAt:  createdAt,
			Severity:   string(alert.Severity),
			AthleteKey: alert.AthleteKey,
			EventCode:  int64(alert.EventCode),
			Gender:     alert.Gender,
			Title:      alert.Title,
			Message:    alert.Message,
			OldRank:    nullRank(alert.OldRank),
			NewRank:    int64(alert.NewRank),
		})
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(alerts), nil
}

func (s Store) Append(ctx context.Context, entry RunLogEntry) error {
	return s.qry.CreateScrapeLog(ctx, db.CreateScrapeLogParams{
		ScrapedAt:       timezone.Now().Unix(),
		EventCode:       int64(entry.EventCode),
		Gender:          entry.Gender,
		Status:          string(entry.Status),
		RowCount:        int64(entry.RowCount),
		DurationSeconds: entry.Elapsed.Seconds(),
		ErrorMessage:    nullString(entry.ErrorMsg),
	})
}

func (s Store) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := s.qry.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, len(rows))
	for i, row := range rows {
		users[i] = User{Id: row.ID, Email: row.Email, Active: row.Active}
	}
	return users, nil
}

func (s Store) IsFavorite(ctx context.Context, userId int64, athleteKey string, eventCode int) (bool, error) {
	return s.qry.IsFavorite(ctx, db.IsFavoriteParams{
		UserID:     userId,
		AthleteKey: athleteKey,
		EventCode:  int64(eventCode),
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.Unix(), Valid: !t.IsZero()}
}

func nullRank(rank *int) sql.NullInt64 {
	if rank == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*rank), Valid: true}
}
