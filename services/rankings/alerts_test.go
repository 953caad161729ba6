package rankings

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type favoriteSet map[string]bool

func (f favoriteSet) IsFavorite(ctx context.Context, userId int64, athleteKey string, eventCode int) (bool, error) {
	return f[fmt.Sprintf("%d/%s/%d", userId, athleteKey, eventCode)], nil
}

var testUsers = []User{
	{Id: 1, Email: "coach@example.com", Active: true},
	{Id: 2, Email: "parent@example.com", Active: true},
}

var testAthlete = Athlete{Key: "dupont_marie", Name: "DUPONT Marie"}

func intp(v int) *int { return &v }

func evaluate(t *testing.T, favorites favoriteSet, oldRank *int, newRank int) []Alert {
	t.Helper()
	engine := AlertEngine{Users: testUsers, Favorites: favorites}
	alerts, err := engine.Evaluate(context.Background(), testAthlete, oldRank, newRank, 670, "F")
	require.NoError(t, err)
	return alerts
}

func TestAlertEnginePodiumEntry(t *testing.T) {
	alerts := evaluate(t, favoriteSet{}, nil, 1)

	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		require.Equal(t, SeverityCritical, alert.Severity)
		require.Equal(t, "Podium: DUPONT Marie", alert.Title)
		require.Contains(t, alert.Message, "entered the top 3")
		require.Nil(t, alert.OldRank)
		require.Equal(t, 1, alert.NewRank)
	}
}

func TestAlertEnginePodiumExitIsExclusive(t *testing.T) {
	// rank 5 is inside the top 10, but the podium band won: no
	// top-10 alert may accompany the exit
	alerts := evaluate(t, favoriteSet{}, intp(3), 5)

	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		require.Equal(t, SeverityCritical, alert.Severity)
		require.Contains(t, alert.Message, "left the top 3")
	}
}

func TestAlertEngineTop10(t *testing.T) {
	entering := evaluate(t, favoriteSet{}, intp(12), 9)
	require.Len(t, entering, 2)
	for _, alert := range entering {
		require.Equal(t, SeverityImportant, alert.Severity)
		require.Contains(t, alert.Message, "entered the top 10")
	}

	exiting := evaluate(t, favoriteSet{}, intp(10), 15)
	require.Len(t, exiting, 2)
	for _, alert := range exiting {
		require.Equal(t, SeverityImportant, alert.Severity)
		require.Contains(t, alert.Message, "left the top 10")
	}
}

func TestAlertEngineTop20Entry(t *testing.T) {
	alerts := evaluate(t, favoriteSet{}, intp(25), 18)

	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		require.Equal(t, SeverityInfo, alert.Severity)
		require.Contains(t, alert.Message, "entered the top 20")
	}
}

func TestAlertEngineUnchangedRank(t *testing.T) {
	require.Empty(t, evaluate(t, favoriteSet{}, intp(9), 9))
	// deep in the field, no band applies either way
	require.Empty(t, evaluate(t, favoriteSet{}, intp(40), 35))
}

func TestAlertEngineFavoriteMovement(t *testing.T) {
	favorites := favoriteSet{"1/dupont_marie/670": true}

	// 8 -> 5 crosses no band boundary, only the favorite fires
	alerts := evaluate(t, favorites, intp(8), 5)

	expect := []Alert{{
		UserId:     1,
		Severity:   SeverityInfo,
		AthleteKey: "dupont_marie",
		EventCode:  670,
		Gender:     "F",
		Title:      "Favorite up: DUPONT Marie",
		Message:    "DUPONT Marie moved from rank 8 to rank 5",
		OldRank:    intp(8),
		NewRank:    5,
	}}
	if diff := cmp.Diff(expect, alerts); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertEngineFavoriteStacksWithBand(t *testing.T) {
	favorites := favoriteSet{"2/dupont_marie/670": true}

	// 4 -> 2 enters the podium and moves a favorite
	alerts := evaluate(t, favorites, intp(4), 2)

	var critical, favorite int
	for _, alert := range alerts {
		switch {
		case alert.Severity == SeverityCritical:
			critical++
		case alert.Title == "Favorite up: DUPONT Marie":
			favorite++
			require.Equal(t, int64(2), alert.UserId)
		}
	}
	require.Equal(t, 2, critical)
	require.Equal(t, 1, favorite)
}

func TestAlertEngineFavoriteDecline(t *testing.T) {
	favorites := favoriteSet{"1/dupont_marie/670": true}

	alerts := evaluate(t, favorites, intp(1), 2)

	// both stayed on the podium: no band alert, only the favorite
	require.Len(t, alerts, 1)
	require.Equal(t, "Favorite down: DUPONT Marie", alerts[0].Title)
}
