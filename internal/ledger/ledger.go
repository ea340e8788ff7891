package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Ledger is the append-only record of item ids already classified. One id
// per line. Ids are never removed or rewritten; a run reads the full set
// once at start and appends one entry per successful classification.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Path() string {
	return l.path
}

// Load reads every id in the ledger artifact. A missing artifact is an
// empty set, not an error.
func (l *Ledger) Load() (map[string]struct{}, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", l.path, err)
	}
	defer f.Close()

	ids := map[string]struct{}{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", l.path, err)
	}
	return ids, nil
}

// Record appends a single id line and flushes it to storage before
// returning. Appends from concurrent items are serialized here so each
// entry lands as one intact line.
func (l *Ledger) Record(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing ledger %s: %w", l.path, err)
	}
	return nil
}
