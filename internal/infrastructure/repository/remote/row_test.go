package remote

import (
	"testing"
	"time"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
)

func TestRowHelpers(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	row := datastore.Row{
		"numeric_id": float64(42),
		"pg_id":      int64(7),
		"uuid":       []byte("2b1c"),
		"round":      "3",
		"json_time":  "2026-10-14T09:30:00+00:00",
		"pg_time":    at,
		"json_date":  "2026-10-14",
		"pg_date":    at,
	}

	if got := getString(row, "numeric_id"); got != "42" {
		t.Fatalf("numeric id: %q", got)
	}
	if got := getString(row, "pg_id"); got != "7" {
		t.Fatalf("pg id: %q", got)
	}
	if got := getString(row, "uuid"); got != "2b1c" {
		t.Fatalf("uuid: %q", got)
	}
	if got := getInt(row, "round"); got != 3 {
		t.Fatalf("round: %d", got)
	}
	if got := getTime(row, "json_time"); !got.Equal(at) {
		t.Fatalf("json time: %v", got)
	}
	if got := getTime(row, "pg_time"); !got.Equal(at) {
		t.Fatalf("pg time: %v", got)
	}
	if got := getDate(row, "json_date"); got != "2026-10-14" {
		t.Fatalf("json date: %q", got)
	}
	if got := getDate(row, "pg_date"); got != "2026-10-14" {
		t.Fatalf("pg date: %q", got)
	}
	if got := getTimePtr(row, "missing"); got != nil {
		t.Fatalf("missing time: %v", got)
	}
}
