package remote

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
	competition.DateLayout,
}

// getString renders text and numeric columns as strings.
func getString(row datastore.Row, key string) string {
	switch typed := row[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case []byte:
		return strings.TrimSpace(string(typed))
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt(row datastore.Row, key string) int {
	switch typed := row[key].(type) {
	case int:
		return typed
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		v, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0
		}
		return v
	case []byte:
		v, err := strconv.Atoi(strings.TrimSpace(string(typed)))
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func getTime(row datastore.Row, key string) time.Time {
	if at := getTimePtr(row, key); at != nil {
		return *at
	}
	return time.Time{}
}

func getTimePtr(row datastore.Row, key string) *time.Time {
	var raw string
	switch typed := row[key].(type) {
	case time.Time:
		if typed.IsZero() {
			return nil
		}
		return &typed
	case *time.Time:
		return typed
	case string:
		raw = typed
	case []byte:
		raw = string(typed)
	default:
		return nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

// getDate renders a date or timestamp column as YYYY-MM-DD.
func getDate(row datastore.Row, key string) string {
	switch typed := row[key].(type) {
	case time.Time:
		if typed.IsZero() {
			return ""
		}
		return typed.Format(competition.DateLayout)
	default:
		raw := getString(row, key)
		if len(raw) > len(competition.DateLayout) {
			if at := getTimePtr(row, key); at != nil {
				return at.Format(competition.DateLayout)
			}
		}
		return raw
	}
}

// nullable maps blank optional text to SQL/JSON null.
func nullable(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullableTime(at *time.Time) any {
	if at == nil || at.IsZero() {
		return nil
	}
	return at.UTC()
}
