package domain

import "time"

// Default reservation policy values
const (
	DefaultBookingWindowDays   = 7
	DefaultMaxDailyCredits     = 2
	DefaultCancelNoticeMinutes = 60
	DefaultTimezone            = "Asia/Seoul"
)

// Allowed booking durations
const (
	OneHourDuration = 60 * time.Minute
	TwoHourDuration = 120 * time.Minute
	OneHourCredits  = 1
	TwoHourCredits  = 2
)

// Time format constants
const (
	TimeFormat     = "15:04"               // HH:MM
	DateFormat     = "2006-01-02"          // YYYY-MM-DD
	DateTimeFormat = "2006-01-02T15:04:05" // local date-time without offset
)
