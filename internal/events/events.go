// Package events loads the curated historical-events file and matches
// records against newspaper dates. A newspaper covers the previous day,
// so the lookup date is the newspaper date minus one.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"frontpage/internal/dateinfo"
	"frontpage/internal/logging"
)

// Record is one curated historical event. Date uses the file's display
// convention, e.g. "January 6, 2021".
type Record struct {
	Date  string `json:"Date"`
	Event string `json:"Event"`
}

// Load reads the events file. A missing file yields an empty list.
func Load(path string) ([]Record, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("events: read %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("events: parse %s: %w", path, err)
	}
	return records, nil
}

// Match returns the first record whose date equals the day before the
// newspaper date, using the file's "Month Day, Year" convention. At most
// one record matches; duplicates beyond the first are ignored.
func Match(records []Record, newspaperDate dateinfo.Date) (Record, bool) {
	lookup := newspaperDate.AddDays(-1).DisplayLong()
	for _, record := range records {
		if strings.TrimSpace(record.Date) == lookup {
			return record, true
		}
	}
	return Record{}, false
}

// ParseRecordDate converts a record's display date into a calendar date.
// Used by the events batch driver, which iterates records rather than
// dates. Unparseable dates are the record author's problem; callers log
// and skip them.
func ParseRecordDate(record Record) (dateinfo.Date, error) {
	parsed, err := time.Parse("January 2, 2006", strings.TrimSpace(record.Date))
	if err != nil {
		return dateinfo.Date{}, fmt.Errorf("events: unparseable date %q: %w", record.Date, err)
	}
	return dateinfo.Date{Year: parsed.Year(), Month: int(parsed.Month()), Day: parsed.Day()}, nil
}

// ValidRecords filters records to those with parseable dates, logging
// each skipped record.
func ValidRecords(records []Record, logger *slog.Logger) []Record {
	if logger == nil {
		logger = logging.NewNop()
	}
	valid := make([]Record, 0, len(records))
	for _, record := range records {
		if _, err := ParseRecordDate(record); err != nil {
			logger.Warn("skipping event record with unparseable date",
				logging.String("record_date", record.Date),
				logging.Error(err),
			)
			continue
		}
		valid = append(valid, record)
	}
	return valid
}
