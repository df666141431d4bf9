package utils

import (
	"time"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StoreTime converts t to the precision kept by DATETIME columns.
func StoreTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// StoreTimeMillis converts t to the precision kept by DATETIME(3) columns.
// MySQL rounds extra fractional digits, so they are dropped here first.
func StoreTimeMillis(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
