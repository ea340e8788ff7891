package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"portionbot/internal/domain"
)

var seqPattern = regexp.MustCompile(`^classification_run_(\d+)\.json$`)

// NextPath scans outputDir for existing reports and returns the path for
// the next sequence number. Existing reports are never overwritten.
func NextPath(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir %s: %w", outputDir, err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("scanning output dir %s: %w", outputDir, err)
	}

	next := 1
	for _, entry := range entries {
		m := seqPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seq >= next {
			next = seq + 1
		}
	}
	return filepath.Join(outputDir, fmt.Sprintf("classification_run_%d.json", next)), nil
}

// Write persists the run report as a new uniquely-named artifact and
// returns its path.
func Write(outputDir string, rep *domain.RunReport) (string, error) {
	path, err := NextPath(outputDir)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}
