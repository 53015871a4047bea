package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/telemetry"
)

func TestTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var all []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"zero", 0, nil},
		{"partial", 5, all[5:]},
		{"exact", 10, all},
		{"more than exists", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tail(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("tail() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("tail() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("tail()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Read() = %v, want no entries", entries)
	}
}

func TestRead_ParsesLoggerOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bookdash.log")
	logger, closeFn, err := telemetry.NewLogger(logPath, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("book created", zap.String("title", "Dune"))
	logger.Warn("fetch books failed", zap.Int("page", 3))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := Read(logPath, 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	first := entries[0]
	if first.Level != "info" || first.Message != "book created" || first.Logger != "bookdash" {
		t.Fatalf("first = %+v", first)
	}
	if first.Time.IsZero() {
		t.Fatal("first.Time is zero, want parsed timestamp")
	}
	if first.Fields["title"] != "Dune" {
		t.Fatalf("first.Fields = %v, want title=Dune", first.Fields)
	}
	if _, ok := first.Fields["caller"]; ok {
		t.Fatal("caller should not be reported as a field")
	}

	second := entries[1]
	if got := second.String(); !strings.Contains(got, "WARN  fetch books failed page=3") {
		t.Fatalf("String() = %q, want level, message and fields", got)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something odd")
	if e.Message != "panic: something odd" || e.Level != "" || !e.Time.IsZero() {
		t.Fatalf("Parse() = %+v, want raw message only", e)
	}
	if e.String() != "panic: something odd" {
		t.Fatalf("String() = %q", e.String())
	}
}

func TestEntry_StringSortsFields(t *testing.T) {
	e := Entry{
		Time:    time.Date(2026, 3, 1, 12, 30, 45, 0, time.Local),
		Level:   "error",
		Message: "delete book failed",
		Fields:  map[string]any{"id": "b1", "error": "boom"},
	}
	want := "12:30:45 ERROR delete book failed error=boom id=b1"
	if got := e.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
