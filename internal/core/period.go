package core

import (
	"fmt"
	"regexp"
	"time"
)

// PeriodToken is a normalized "YYYY-MM" billing period. It is the sole
// period representation used for grouping; never a full date, so monthly
// bucketing stays unambiguous.
type PeriodToken string

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func NewPeriod(year int, month time.Month) PeriodToken {
	return PeriodToken(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) PeriodToken {
	return NewPeriod(t.Year(), t.Month())
}

func (p PeriodToken) Valid() bool {
	return periodPattern.MatchString(string(p))
}

func (p PeriodToken) String() string {
	return string(p)
}
