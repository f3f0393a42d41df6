package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupLogs removes .log files under dir older than retentionDays. It
// returns the number of files removed. A retention of zero or less disables
// cleanup.
func CleanupLogs(dir string, retentionDays int) (int, error) {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
