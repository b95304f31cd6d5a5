package db

import (
	"strings"
	"testing"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(Config{
		Server:   "db.internal",
		Port:     3307,
		Database: "GoalTracker",
		User:     "app",
		Password: "s3cret",
	})

	if !strings.HasPrefix(dsn, "app:s3cret@tcp(db.internal:3307)/GoalTracker?") {
		t.Errorf("dsn address = %q", dsn)
	}

	// clientFoundRows keeps RowsAffected meaning "rows matched"; without
	// it an update that re-submits identical values reports zero rows
	// and repositories misread that as a missing row.
	for _, param := range []string{"parseTime=true", "loc=UTC", "clientFoundRows=true"} {
		if !strings.Contains(dsn, param) {
			t.Errorf("dsn %q missing %s", dsn, param)
		}
	}
}
