package athle

import "time"

// RankingRow is a single entry of a national rankings table.
// Rank may repeat across consecutive rows when the source marks
// athletes as tied (ex-aequo).
type RankingRow struct {
	Rank int
	// stable identifier derived from Name, see textutil.AthleteKey
	AthleteKey         string
	Name               string
	Performance        string
	PerformanceNumeric float64
	Club               string
	League             string
	Department         string
	Infos              string
	RecordDate         time.Time
	Venue              string
}

// Snapshot is the full rankings table of one event+gender at one
// capture time, rows in source order (ranks non-decreasing).
type Snapshot struct {
	CapturedAt time.Time
	EventCode  int
	Gender     string
	Rows       []RankingRow
}
