package athle

import (
	"regexp"
	"strconv"
	"time"

	"athletrack-backend/lib/textutil"
)

var nonDigitRegex = regexp.MustCompile(`[^0-9]`)
var performanceShapeRegex = regexp.MustCompile(`(?i)\d+m\d+|\d+\.\d+`)

// record dates come as DD/MM/YY
const recordDateLayout = "02/01/06"

// ParseRow turns the cell texts of one table row into a RankingRow.
//
// lastValidRank is the rank of the most recent row whose rank cell held
// an actual number; a "-" placeholder marks the athlete ex-aequo with
// that row and does not advance it. The returned int is the state to
// carry into the next row.
//
// Rows that are not ranking entries (banner rows, per-athlete detail
// rows whose performance cell is really a club name, rows with no
// parsable rank) are rejected with ok=false and skipped by the caller.
func ParseRow(cells []string, lastValidRank int, capturedAt time.Time) (row RankingRow, nextValidRank int, ok bool) {
	nextValidRank = lastValidRank
	if len(cells) < 3 {
		return RankingRow{}, nextValidRank, false
	}

	rankText := cells[0]
	performanceText := cells[1]
	name := cells[2]
	club := cellAt(cells, 3)
	league := cellAt(cells, 4)
	department := cellAt(cells, 5)
	infos := cellAt(cells, 6)
	dateText := cellAt(cells, 7)
	venue := cellAt(cells, 8)

	if name == "" || performanceText == "" {
		return RankingRow{}, nextValidRank, false
	}

	var rank int
	if rankText == "-" {
		// ex-aequo with the previous ranked row
		rank = lastValidRank
	} else {
		digits := nonDigitRegex.ReplaceAllString(rankText, "")
		if digits == "" {
			return RankingRow{}, nextValidRank, false
		}
		parsed, err := strconv.Atoi(digits)
		if err != nil {
			return RankingRow{}, nextValidRank, false
		}
		rank = parsed
		nextValidRank = parsed
	}

	// filters detail rows, where the performance column actually
	// holds a club name
	if !performanceShapeRegex.MatchString(performanceText) {
		return RankingRow{}, lastValidRank, false
	}

	performance, performanceNumeric := ParsePerformance(performanceText)

	recordDate := capturedAt
	if dateText != "" {
		parsed, err := time.ParseInLocation(recordDateLayout, dateText, capturedAt.Location())
		if err == nil {
			recordDate = parsed
		}
	}

	return RankingRow{
		Rank:               rank,
		AthleteKey:         textutil.AthleteKey(name),
		Name:               name,
		Performance:        performance,
		PerformanceNumeric: performanceNumeric,
		Club:               club,
		League:             league,
		Department:         department,
		Infos:              infos,
		RecordDate:         recordDate,
		Venue:              venue,
	}, nextValidRank, true
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
