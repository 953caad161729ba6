package rankings

import (
	"context"
	"fmt"
)

const (
	podiumRank = 3
	top10Rank  = 10
	top20Rank  = 20
)

// AlertEngine turns one athlete's rank movement into the alerts owed to
// each recipient.
//
// The threshold bands are mutually exclusive and checked in order:
// podium first, then top 10, then top 20 — an athlete leaving the
// podium gets a podium alert only, never an additional "still in the
// top 10" one. Favorite-movement alerts are independent of the bands
// and may accompany a band alert for the same athlete.
type AlertEngine struct {
	// active recipients of band alerts
	Users     []User
	Favorites FavoriteIndex
}

func (e AlertEngine) Evaluate(ctx context.Context, athlete Athlete, oldRank *int, newRank int, eventCode int, gender string) ([]Alert, error) {
	var alerts []Alert

	band := func(severity Severity, title, message string) {
		for _, user := range e.Users {
			alerts = append(alerts, Alert{
				UserId:     user.Id,
				Severity:   severity,
				AthleteKey: athlete.Key,
				EventCode:  eventCode,
				Gender:     gender,
				Title:      title,
				Message:    message,
				OldRank:    oldRank,
				NewRank:    newRank,
			})
		}
	}

	switch {
	case newRank <= podiumRank && (oldRank == nil || *oldRank > podiumRank):
		band(SeverityCritical,
			fmt.Sprintf("Podium: %s", athlete.Name),
			fmt.Sprintf("%s entered the top 3 (rank %d)", athlete.Name, newRank))

	case oldRank != nil && *oldRank <= podiumRank && newRank > podiumRank:
		band(SeverityCritical,
			fmt.Sprintf("Podium: %s", athlete.Name),
			fmt.Sprintf("%s left the top 3 (rank %d to %d)", athlete.Name, *oldRank, newRank))

	case newRank <= top10Rank && (oldRank == nil || *oldRank > top10Rank):
		band(SeverityImportant,
			fmt.Sprintf("Top 10: %s", athlete.Name),
			fmt.Sprintf("%s entered the top 10 (rank %d)", athlete.Name, newRank))

	case oldRank != nil && *oldRank <= top10Rank && newRank > top10Rank:
		band(SeverityImportant,
			fmt.Sprintf("Top 10: %s", athlete.Name),
			fmt.Sprintf("%s left the top 10 (rank %d to %d)", athlete.Name, *oldRank, newRank))

	case newRank <= top20Rank && (oldRank == nil || *oldRank > top20Rank):
		band(SeverityInfo,
			fmt.Sprintf("Top 20: %s", athlete.Name),
			fmt.Sprintf("%s entered the top 20 (rank %d)", athlete.Name, newRank))

	case oldRank != nil && *oldRank <= top20Rank && newRank > top20Rank:
		band(SeverityInfo,
			fmt.Sprintf("Top 20: %s", athlete.Name),
			fmt.Sprintf("%s left the top 20 (rank %d to %d)", athlete.Name, *oldRank, newRank))
	}

	// favorite movement fires on any rank change, on top of whatever
	// band alert was produced above
	if oldRank != nil && *oldRank != newRank {
		direction := "up"
		if newRank > *oldRank {
			direction = "down"
		}
		for _, user := range e.Users {
			favorite, err := e.Favorites.IsFavorite(ctx, user.Id, athlete.Key, eventCode)
			if err != nil {
				return nil, err
			}
			if !favorite {
				continue
			}
			alerts = append(alerts, Alert{
				UserId:     user.Id,
				Severity:   SeverityInfo,
				AthleteKey: athlete.Key,
				EventCode:  eventCode,
				Gender:     gender,
				Title:      fmt.Sprintf("Favorite %s: %s", direction, athlete.Name),
				Message:    fmt.Sprintf("%s moved from rank %d to rank %d", athlete.Name, *oldRank, newRank),
				OldRank:    oldRank,
				NewRank:    newRank,
			})
		}
	}

	return alerts, nil
}
