package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/five82/bookdash/internal/telemetry"
)

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]any
	// Raw is the original line. For non-JSON lines it is also the Message.
	Raw string
}

// Read returns at most maxLines entries from the end of the file at path.
// A missing file yields no entries.
func Read(path string, maxLines int) ([]Entry, error) {
	lines, err := tail(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a zap JSON line. Lines that are not JSON objects are kept as
// plain messages.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}

	var raw map[string]any
	if err := sonic.UnmarshalString(line, &raw); err != nil || raw == nil {
		return entry
	}

	if v, ok := raw[telemetry.TimeKey].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			entry.Time = ts
		}
	}
	entry.Level, _ = raw[telemetry.LevelKey].(string)
	entry.Logger, _ = raw[telemetry.LoggerKey].(string)
	if msg, ok := raw[telemetry.MessageKey].(string); ok {
		entry.Message = msg
	}

	for _, key := range []string{telemetry.TimeKey, telemetry.LevelKey, telemetry.LoggerKey, telemetry.MessageKey, "caller"} {
		delete(raw, key)
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}

// String formats the entry for the log pane.
func (e Entry) String() string {
	if e.Time.IsZero() && e.Level == "" {
		return e.Message
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

func tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
