package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
}

// force the timezone to IST because the deployment region is not
// guaranteed, and cache staleness math should not shift when the
// host happens to land in another region
func Now() time.Time {
	return time.Now().In(Location)
}
