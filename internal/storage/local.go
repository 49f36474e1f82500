// File: internal/storage/local.go
// Naming helpers for the local artifact directory and the blob keys.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var legalNameUnsafe = regexp.MustCompile(`[^\w\-]`)

// SanitizeLegalName makes an entity name safe for use inside a blob key:
// spaces removed, then everything outside word characters and hyphens.
func SanitizeLegalName(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "UnknownEntity"
	}
	return legalNameUnsafe.ReplaceAllString(strings.ReplaceAll(name, " ", ""), "")
}

// ScreenshotKey is the blob key for a run's confirmation screenshot.
func ScreenshotKey(recordID, legalName string) string {
	return fmt.Sprintf("%s/%sEINScreenshot.png", recordID, SanitizeLegalName(legalName))
}

// OutcomeKey is the blob key for a run's outcome document.
func OutcomeKey(recordID, legalName string) string {
	return fmt.Sprintf("%s/%s_data.json", recordID, SanitizeLegalName(legalName))
}

// ScreenshotFilename names a local capture with the record id and a unix
// timestamp so later captures for the same record sort after earlier ones.
func ScreenshotFilename(recordID string, now time.Time) string {
	return fmt.Sprintf("print_%s_%d.png", recordID, now.Unix())
}

// LatestScreenshot finds the most recent capture for a record in dir by
// comparing the embedded timestamps numerically.
func LatestScreenshot(dir, recordID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact dir: %w", err)
	}

	prefix := "print_" + recordID + "_"
	best := ""
	var bestTS int64 = -1
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".png") {
			continue
		}
		tsPart := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".png")
		ts, parseErr := strconv.ParseInt(tsPart, 10, 64)
		if parseErr != nil {
			continue
		}
		if ts > bestTS {
			bestTS = ts
			best = name
		}
	}
	if best == "" {
		return "", fmt.Errorf("no screenshot found for record %s", recordID)
	}
	return filepath.Join(dir, best), nil
}
