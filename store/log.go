package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SeenLog is a durable set of game IDs, one per line in an append-only
// file. The replay collector consults it so a crawl never re-queues a
// game it already handed to the download pool.
//
// Every Add is appended and fsynced before it is visible through Has. A
// crash mid-write loses at most the final partial line, which costs one
// duplicate fetch on the next run.
type SeenLog struct {
	mu   sync.RWMutex
	file *os.File
	seen map[string]struct{}
}

// OpenSeenLog loads the IDs recorded at path and opens it for appending,
// creating the file and its directory as needed.
func OpenSeenLog(path string) (*SeenLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	seen, err := readSeen(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read log: %w", err)
	}

	return &SeenLog{file: file, seen: seen}, nil
}

// readSeen scans the whole file. Blank lines are tolerated so a torn
// final write does not poison the set.
func readSeen(file *os.File) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			seen[id] = struct{}{}
		}
	}
	return seen, scanner.Err()
}

// Has reports whether the ID was recorded by this or an earlier run.
func (l *SeenLog) Has(gameID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[gameID]
	return ok
}

func (l *SeenLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}

// Add records the ID durably. Re-adding a known ID is a no-op.
func (l *SeenLog) Add(gameID string) error {
	if gameID == "" {
		return fmt.Errorf("gameID is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[gameID]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("log file is closed")
	}

	if _, err := l.file.WriteString(gameID + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}

	l.seen[gameID] = struct{}{}
	return nil
}

func (l *SeenLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
