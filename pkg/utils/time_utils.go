package utils

import "time"

// India Standard Time (+05:30); record timestamps are displayed in this zone.
var istLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}()

func IST() *time.Location { return istLoc }

// FormatDateIST renders DD/MM/YYYY.
func FormatDateIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format("02/01/2006")
}

// FormatClockIST renders hh:mm AM/PM.
func FormatClockIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format("03:04 PM")
}
