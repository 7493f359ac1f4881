package mapi

import (
	"math"
	"time"
)

// fileTimeEpochDelta is the number of 100ns ticks between 1601-01-01 and
// 1970-01-01.
const fileTimeEpochDelta = 116444736000000000

// appTimeEpoch is day zero of the OLE automation date.
var appTimeEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FileTime converts a FILETIME tick count to UTC.
func FileTime(ticks int64) time.Time {
	d := ticks - fileTimeEpochDelta
	sec, rem := d/10000000, d%10000000
	if rem < 0 {
		rem += 10000000
		sec--
	}
	return time.Unix(sec, rem*100).UTC()
}

// AppTime converts an OLE automation date (days since 1899-12-30, with the
// time of day as the fraction) to UTC.
func AppTime(days float64) time.Time {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return time.Time{}
	}
	whole := math.Trunc(days)
	frac := math.Abs(days - whole)
	return appTimeEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(math.Round(frac * float64(24*time.Hour))))
}
