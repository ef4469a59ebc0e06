package workspace

import (
	"fmt"
	"time"
)

// DirName returns the workspace directory name for date, W%U-%Y-%m-%d, where
// %U is the Sunday-based week of the year (days before the first Sunday fall
// in week 00).
func DirName(date time.Time) string {
	return fmt.Sprintf("W%02d-%s", SundayWeek(date), date.Format("2006-01-02"))
}

// SundayWeek mirrors strftime's %U.
func SundayWeek(date time.Time) int {
	yday := date.YearDay() - 1
	wday := int(date.Weekday())
	return (yday + 7 - wday) / 7
}
