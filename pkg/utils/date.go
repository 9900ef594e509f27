package utils

import (
	"log"
	"time"
)

func GetJSTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// TimeNowJST returns the current time in Japan Standard Time. The analysis
// batch and its job logs are anchored to the Tokyo trading day.
func TimeNowJST() time.Time {
	return time.Now().In(GetJSTLocation())
}

// TruncateToDay drops the time-of-day component, keeping the location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
