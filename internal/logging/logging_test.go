package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWritesToRollingFileWhenDirSet(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Dir: dir})
	logger.Info().Msg("hello")

	expected := filepath.Join(dir, "app_"+time.Now().UTC().Format("20060102")+".log")
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("want a log file at %s, got error: %v", expected, err)
	}
	if len(data) == 0 {
		t.Fatal("want the rolling log file to contain the logged line")
	}
}

func TestNewWithoutDirSkipsFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Level: LevelInfo, Format: FormatJSON})
	logger.Info().Msg("no file")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatal("want no files written when Dir is empty")
	}
}

func TestRollingFileReopensOnDayChange(t *testing.T) {
	dir := t.TempDir()
	rf := newRollingFile(dir)

	rf.day = "19700101" // force a stale day so the next write rolls over
	if _, err := rf.Write([]byte("line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if rf.day == "19700101" {
		t.Fatal("want the rolling file to adopt the current UTC day on write")
	}
}
