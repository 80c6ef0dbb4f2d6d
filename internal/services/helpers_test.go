package services_test

import (
	"time"

	"gorm.io/gorm"
)

// testDeps bundles handles the test helpers need alongside the service under
// test.
type testDeps struct {
	db *gorm.DB
}

// date builds a date-only timestamp in UTC.
func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
