package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Chihuahua")
	if err != nil {
		panic(err)
	}
}

// force the tenant timezone regardless of where the server runs,
// CRM payloads and token expiry math both assume it
func Now() time.Time {
	return time.Now().In(Location)
}
