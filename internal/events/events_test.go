package events_test

import (
	"os"
	"path/filepath"
	"testing"

	"frontpage/internal/dateinfo"
	"frontpage/internal/events"
	"frontpage/internal/logging"
)

func mustDate(t *testing.T, value string) dateinfo.Date {
	t.Helper()
	date, err := dateinfo.Parse(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return date
}

func TestMatchUsesDayBeforeNewspaperDate(t *testing.T) {
	records := []events.Record{
		{Date: "January 6, 2021", Event: "X"},
	}
	record, ok := events.Match(records, mustDate(t, "2021-01-07"))
	if !ok {
		t.Fatal("expected match")
	}
	if record.Event != "X" {
		t.Fatalf("event = %q", record.Event)
	}

	if _, ok := events.Match(records, mustDate(t, "2021-01-06")); ok {
		t.Fatal("newspaper date equal to event date must not match")
	}
}

func TestMatchFirstRecordWins(t *testing.T) {
	records := []events.Record{
		{Date: "July 20, 2019", Event: "first"},
		{Date: "July 20, 2019", Event: "second"},
	}
	record, ok := events.Match(records, mustDate(t, "2019-07-21"))
	if !ok {
		t.Fatal("expected match")
	}
	if record.Event != "first" {
		t.Fatalf("expected first record to win, got %q", record.Event)
	}
}

func TestLoadMissingFile(t *testing.T) {
	records, err := events.Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestLoadParsesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	content := `[{"Date": "November 9, 2016", "Event": "Election result"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := events.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].Event != "Election result" {
		t.Fatalf("records = %v", records)
	}
}

func TestValidRecordsSkipsUnparseableDates(t *testing.T) {
	records := []events.Record{
		{Date: "January 6, 2021", Event: "good"},
		{Date: "sometime in March", Event: "bad"},
		{Date: "2021-01-06", Event: "wrong convention"},
	}
	valid := events.ValidRecords(records, logging.NewNop())
	if len(valid) != 1 || valid[0].Event != "good" {
		t.Fatalf("valid = %v", valid)
	}
}

func TestParseRecordDate(t *testing.T) {
	date, err := events.ParseRecordDate(events.Record{Date: "January 6, 2021"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if date.ISO() != "2021-01-06" {
		t.Fatalf("date = %s", date.ISO())
	}
}
