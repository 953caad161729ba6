package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Event struct {
	ID        int64
	Code      int64
	Name      string
	Active    bool
	CreatedAt int64
}

const getEventByCode = `
SELECT id, code, name, active, created_at FROM events WHERE code = ?
`

func (q *Queries) GetEventByCode(ctx context.Context, code int64) (Event, error) {
	row := q.db.QueryRowContext(ctx, getEventByCode, code)
	var e Event
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Active, &e.CreatedAt)
	return e, err
}

const listActiveEvents = `
SELECT id, code, name, active, created_at FROM events WHERE active = 1 ORDER BY code
`

func (q *Queries) ListActiveEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listActiveEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type CreateEventParams struct {
	Code      int64
	Name      string
	Active    bool
	CreatedAt int64
}

const createEvent = `
INSERT INTO events (code, name, active, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (code) DO UPDATE SET name = excluded.name, active = excluded.active
`

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, createEvent, arg.Code, arg.Name, arg.Active, arg.CreatedAt)
	return err
}

type Athlete struct {
	ID         int64
	AthleteKey string
	Name       string
	FirstSeen  int64
}

type CreateAthleteParams struct {
	AthleteKey string
	Name       string
	FirstSeen  int64
}

const createAthlete = `
INSERT INTO athletes (athlete_key, name, first_seen) VALUES (?, ?, ?)
ON CONFLICT (athlete_key) DO NOTHING
`

func (q *Queries) CreateAthlete(ctx context.Context, arg CreateAthleteParams) error {
	_, err := q.db.ExecContext(ctx, createAthlete, arg.AthleteKey, arg.Name, arg.FirstSeen)
	return err
}

const getAthlete = `
SELECT id, athlete_key, name, first_seen FROM athletes WHERE athlete_key = ?
`

func (q *Queries) GetAthlete(ctx context.Context, athleteKey string) (Athlete, error) {
	row := q.db.QueryRowContext(ctx, getAthlete, athleteKey)
	var a Athlete
	err := row.Scan(&a.ID, &a.AthleteKey, &a.Name, &a.FirstSeen)
	return a, err
}

type Ranking struct {
	ID                 int64
	CapturedAt         int64
	EventCode          int64
	Gender             string
	Rank               int64
	AthleteKey         string
	Performance        string
	PerformanceNumeric float64
	Club               sql.NullString
	League             sql.NullString
	Department         sql.NullString
	RecordDate         sql.NullInt64
	Venue              sql.NullString
}

type LatestCaptureParams struct {
	EventCode int64
	Gender    string
}

const getLatestCaptureTime = `
SELECT MAX(captured_at) FROM rankings WHERE event_code = ? AND gender = ?
`

// returns ok=false when no snapshot has ever been stored for this
// event+gender
func (q *Queries) GetLatestCaptureTime(ctx context.Context, arg LatestCaptureParams) (int64, bool, error) {
	row := q.db.QueryRowContext(ctx, getLatestCaptureTime, arg.EventCode, arg.Gender)
	var capturedAt sql.NullInt64
	err := row.Scan(&capturedAt)
	if err != nil {
		return 0, false, err
	}
	return capturedAt.Int64, capturedAt.Valid, nil
}

type ListRankingsAtParams struct {
	EventCode  int64
	Gender     string
	CapturedAt int64
}

const listRankingsAt = `
SELECT id, captured_at, event_code, gender, rank, athlete_key,
       performance, performance_numeric, club, league, department, record_date, venue
FROM rankings
WHERE event_code = ? AND gender = ? AND captured_at = ?
ORDER BY id
`

func (q *Queries) ListRankingsAt(ctx context.Context, arg ListRankingsAtParams) ([]Ranking, error) {
	rows, err := q.db.QueryContext(ctx, listRankingsAt, arg.EventCode, arg.Gender, arg.CapturedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rankings []Ranking
	for rows.Next() {
		var r Ranking
		err := rows.Scan(
			&r.ID, &r.CapturedAt, &r.EventCode, &r.Gender, &r.Rank, &r.AthleteKey,
			&r.Performance, &r.PerformanceNumeric, &r.Club, &r.League, &r.Department,
			&r.RecordDate, &r.Venue,
		)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

type CreateRankingParams struct {
	CapturedAt         int64
	EventCode          int64
	Gender             string
	Rank               int64
	AthleteKey         string
	Performance        string
	PerformanceNumeric float64
	Club               sql.NullString
	League             sql.NullString
	Department         sql.NullString
	RecordDate         sql.NullInt64
	Venue              sql.NullString
}

const createRanking = `
INSERT INTO rankings (
    captured_at, event_code, gender, rank, athlete_key,
    performance, performance_numeric, club, league, department, record_date, venue
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateRanking(ctx context.Context, arg CreateRankingParams) error {
	_, err := q.db.ExecContext(ctx, createRanking,
		arg.CapturedAt, arg.EventCode, arg.Gender, arg.Rank, arg.AthleteKey,
		arg.Performance, arg.PerformanceNumeric, arg.Club, arg.League, arg.Department,
		arg.RecordDate, arg.Venue,
	)
	return err
}

type CreateAlertParams struct {
	UserID     int64
	CreatedAt  int64
	Severity   string
	AthleteKey string
	EventCode  int64
	Gender     string
	Title      string
	Message    string
	OldRank    sql.NullInt64
	NewRank    int64
}

const createAlert = `
INSERT INTO alerts (
    user_id, created_at, severity, athlete_key, event_code, gender,
    title, message, old_rank, new_rank
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateAlert(ctx context.Context, arg CreateAlertParams) error {
	_, err := q.db.ExecContext(ctx, createAlert,
		arg.UserID, arg.CreatedAt, arg.Severity, arg.AthleteKey, arg.EventCode, arg.Gender,
		arg.Title, arg.Message, arg.OldRank, arg.NewRank,
	)
	return err
}

type Alert struct {
	ID         int64
	UserID     int64
	CreatedAt  int64
	Severity   string
	AthleteKey string
	EventCode  int64
	Gender     string
	Title      string
	Message    string
	OldRank    sql.NullInt64
	NewRank    int64
	IsRead     bool
}

const listAlertsForUser = `
SELECT id, user_id, created_at, severity, athlete_key, event_code, gender,
       title, message, old_rank, new_rank, is_read
FROM alerts WHERE user_id = ? ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListAlertsForUser(ctx context.Context, userID int64) ([]Alert, error) {
	rows, err := q.db.QueryContext(ctx, listAlertsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		err := rows.Scan(
			&a.ID, &a.UserID, &a.CreatedAt, &a.Severity, &a.AthleteKey, &a.EventCode,
			&a.Gender, &a.Title, &a.Message, &a.OldRank, &a.NewRank, &a.IsRead,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

type CreateScrapeLogParams struct {
	ScrapedAt       int64
	EventCode       int64
	Gender          string
	Status          string
	RowCount        int64
	DurationSeconds float64
	ErrorMessage    sql.NullString
}

const createScrapeLog = `
INSERT INTO scrape_logs (
    scraped_at, event_code, gender, status, row_count, duration_seconds, error_message
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateScrapeLog(ctx context.Context, arg CreateScrapeLogParams) error {
	_, err := q.db.ExecContext(ctx, createScrapeLog,
		arg.ScrapedAt, arg.EventCode, arg.Gender, arg.Status,
		arg.RowCount, arg.DurationSeconds, arg.ErrorMessage,
	)
	return err
}

type ScrapeLog struct {
	ID              int64
	ScrapedAt       int64
	EventCode       int64
	Gender          string
	Status          string
	RowCount        int64
	DurationSeconds float64
	ErrorMessage    sql.NullString
}

const listScrapeLogs = `
SELECT id, scraped_at, event_code, gender, status, row_count, duration_seconds, error_message
FROM scrape_logs ORDER BY scraped_at DESC, id DESC
`

func (q *Queries) ListScrapeLogs(ctx context.Context) ([]ScrapeLog, error) {
	rows, err := q.db.QueryContext(ctx, listScrapeLogs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ScrapeLog
	for rows.Next() {
		var l ScrapeLog
		err := rows.Scan(
			&l.ID, &l.ScrapedAt, &l.EventCode, &l.Gender, &l.Status,
			&l.RowCount, &l.DurationSeconds, &l.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

type User struct {
	ID        int64
	Email     string
	Active    bool
	CreatedAt int64
}

const listActiveUsers = `
SELECT id, email, active, created_at FROM users WHERE active = 1 ORDER BY id
`

func (q *Queries) ListActiveUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listActiveUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type CreateUserParams struct {
	Email     string
	Active    bool
	CreatedAt int64
}

const createUser = `
INSERT INTO users (email, active, created_at) VALUES (?, ?, ?)
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.Email, arg.Active, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type IsFavoriteParams struct {
	UserID     int64
	AthleteKey string
	EventCode  int64
}

const isFavorite = `
SELECT COUNT(*) FROM favorites WHERE user_id = ? AND athlete_key = ? AND event_code = ?
`

func (q *Queries) IsFavorite(ctx context.Context, arg IsFavoriteParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, isFavorite, arg.UserID, arg.AthleteKey, arg.EventCode)
	var count int64
	err := row.Scan(&count)
	return count > 0, err
}

type CreateFavoriteParams struct {
	UserID     int64
	AthleteKey string
	EventCode  int64
	AddedAt    int64
}

const createFavorite = `
INSERT INTO favorites (user_id, athlete_key, event_code, added_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, athlete_key, event_code) DO NOTHING
`

func (q *Queries) CreateFavorite(ctx context.Context, arg CreateFavoriteParams) error {
	_, err := q.db.ExecContext(ctx, createFavorite, arg.UserID, arg.AthleteKey, arg.EventCode, arg.AddedAt)
	return err
}
