package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Paris because the rankings site publishes
// Paris-local dates and our servers are not guaranteed to run in
// that timezone, which would skew snapshot dates computed from
// <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}
