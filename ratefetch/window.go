package ratefetch

import "time"

// DefaultPublishHour is the local hour at which BNR publishes the day's rates.
const DefaultPublishHour = 13

// Expired reports whether a document saved at saveTime must be fetched again
// at now. Before today's publication mark a document saved after yesterday's
// mark is current. From the mark on only a document saved at or after it is.
func Expired(saveTime, now time.Time, loc *time.Location, hour int) bool {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	if now.Before(today) {
		return !saveTime.After(yesterday)
	}
	return saveTime.Before(today)
}
