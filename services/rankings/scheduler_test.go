package rankings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickRunTimeStaysInWindow(t *testing.T) {
	// 01:45 to 03:15
	start, end := 105, 195

	for i := 0; i < 500; i++ {
		hour, minute, err := PickRunTime(start, end)
		require.NoError(t, err)

		minuteOfDay := hour*60 + minute
		require.GreaterOrEqual(t, minuteOfDay, start)
		require.LessOrEqual(t, minuteOfDay, end)
	}
}

func TestPickRunTimeDegenerateWindow(t *testing.T) {
	hour, minute, err := PickRunTime(125, 125)
	require.NoError(t, err)
	require.Equal(t, 2, hour)
	require.Equal(t, 5, minute)
}

func TestPickRunTimeInvertedWindow(t *testing.T) {
	_, _, err := PickRunTime(195, 105)
	require.Error(t, err)
}

func TestParseClock(t *testing.T) {
	minuteOfDay, err := parseClock("01:45")
	require.NoError(t, err)
	require.Equal(t, 105, minuteOfDay)

	minuteOfDay, err = parseClock("23:59")
	require.NoError(t, err)
	require.Equal(t, 1439, minuteOfDay)

	for _, bad := range []string{"", "145", "25:00", "12:75", "ab:cd"} {
		_, err := parseClock(bad)
		require.Error(t, err, "parseClock(%q)", bad)
	}
}
