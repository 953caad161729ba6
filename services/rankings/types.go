package rankings

import (
	"context"
	"time"

	"athletrack-backend/lib/scrapers/athle"
)

type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityInfo      Severity = "info"
)

type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial"
	StatusError   RunStatus = "error"
)

type Event struct {
	Code   int
	Name   string
	Active bool
}

type User struct {
	Id     int64
	Email  string
	Active bool
}

type Athlete struct {
	Key       string
	Name      string
	FirstSeen time.Time
}

// Alert is one notification to one user about one athlete's rank
// movement. OldRank is nil for an athlete that was not in the previous
// snapshot. The read/unread flag lives with the alert store, not here.
type Alert struct {
	UserId     int64
	Severity   Severity
	AthleteKey string
	EventCode  int
	Gender     string
	Title      string
	Message    string
	OldRank    *int
	NewRank    int
}

type RunLogEntry struct {
	EventCode int
	Gender    string
	Status    RunStatus
	RowCount  int
	Elapsed   time.Duration
	ErrorMsg  string
}

// collaborator contracts consumed by the pipeline; the sqlite
// implementation lives in store.go

type EventDirectory interface {
	// ok=false when no event with this code exists
	GetEventByCode(ctx context.Context, code int) (Event, bool, error)
	ListActiveEvents(ctx context.Context) ([]Event, error)
}

type AthleteDirectory interface {
	// idempotent on key, the first seen timestamp of an existing
	// athlete is preserved
	GetOrCreateAthlete(ctx context.Context, key, name string, firstSeen time.Time) (Athlete, error)
}

type RankingStore interface {
	// most recent stored snapshot for event+gender; a zero capture
	// time means none was ever stored
	GetLatestSnapshot(ctx context.Context, eventCode int, gender string) (time.Time, []athle.RankingRow, error)
	// inserts all rows of the snapshot in one transaction
	BulkInsertSnapshot(ctx context.Context, snapshot athle.Snapshot) (int, error)
}

type AlertStore interface {
	BulkInsertAlerts(ctx context.Context, alerts []Alert) (int, error)
}

type RunLog interface {
	Append(ctx context.Context, entry RunLogEntry) error
}

type UserDirectory interface {
	ListActiveUsers(ctx context.Context) ([]User, error)
}

type FavoriteIndex interface {
	IsFavorite(ctx context.Context, userId int64, athleteKey string, eventCode int) (bool, error)
}
