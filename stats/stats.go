package stats

import (
	"time"
)

// Stats is one measurement window, written as a single point.
type Stats interface {
	StatsType() string
	StatsInstance() string
	StatsTime() time.Time
	StatsFields() map[string]interface{}
	String() string
}
