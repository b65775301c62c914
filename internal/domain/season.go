package domain

import "time"

// SeasonFor returns the southern hemisphere meteorological season of t.
func SeasonFor(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "Summer"
	case time.March, time.April, time.May:
		return "Autumn"
	case time.June, time.July, time.August:
		return "Winter"
	default:
		return "Spring"
	}
}
