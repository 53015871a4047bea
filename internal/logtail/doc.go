// Package logtail reads the tail of the bookdash log file for the TUI.
//
// # Overview
//
// Read extracts the last N lines of a file with a ring buffer, so memory is
// bounded by N rather than by file size, then parses each line into an
// Entry. Lines written by telemetry.NewLogger are zap JSON objects; the
// standard keys become Entry fields and everything else lands in Fields.
// Lines that are not JSON (a panic trace, for example) are kept verbatim as
// the entry message.
//
// # Usage Example
//
//	entries, err := logtail.Read(cfg.LogPath, 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range entries {
//		fmt.Println(e.String())
//	}
package logtail
