package ledger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestLoadMissingFileIsEmptySet(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing.txt"))

	ids, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set, got %v", ids)
	}
}

func TestRecordThenLoadRoundTrip(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "ids.txt"))

	for _, id := range []string{"1", "2", "42"} {
		if err := l.Record(id); err != nil {
			t.Fatalf("Record(%s) failed: %v", id, err)
		}
	}

	ids, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, id := range []string{"1", "2", "42"} {
		if _, ok := ids[id]; !ok {
			t.Fatalf("expected id %s in ledger, got %v", id, ids)
		}
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
}

func TestRecordIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	l := New(path)

	if err := l.Record("1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := l.Record("2"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading ledger file: %v", err)
	}
	if string(data) != "1\n2\n" {
		t.Fatalf("expected one id per line in append order, got %q", string(data))
	}
}

func TestConcurrentRecordsLandAsIntactLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	l := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Record(strconv.Itoa(i)); err != nil {
				t.Errorf("Record(%d) failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading ledger file: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d: %q", len(lines), string(data))
	}

	ids, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		if _, ok := ids[strconv.Itoa(i)]; !ok {
			t.Fatalf("missing id %d after concurrent appends", i)
		}
	}
}

func TestRecordCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ids.txt")
	l := New(path)

	if err := l.Record("7"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	ids, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := ids["7"]; !ok {
		t.Fatalf("expected id 7, got %v", ids)
	}
}
