package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// OpLog is an append-only, crash-durable sequence of records backed by a
// newline-delimited JSON file. Appends are serialized by a single writer
// mutex, which totals the durable order across concurrent callers.
type OpLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
	logger *slog.Logger
}

// Open opens or creates the operation log at the given path.
func Open(path string) (*OpLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("timers: failed to open operation log: %w", err)
	}

	return &OpLog{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   path,
		logger: slog.Default(),
	}, nil
}

// SetLogger replaces the logger used for non-fatal read warnings.
func (l *OpLog) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Path returns the log file path.
func (l *OpLog) Path() string {
	return l.path
}

// Append serializes the record as one line and forces it to disk before
// returning. A nil error means the record is durable.
func (l *OpLog) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("timers: failed to serialize log record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("timers: failed to append to operation log: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("timers: failed to append to operation log: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("timers: failed to flush operation log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("timers: failed to sync operation log: %w", err)
	}
	return nil
}

// ReadAll opens the log from the beginning and returns every well-formed
// record in append order. Malformed lines are logged and skipped; corruption
// of one record must not block recovery of the rest.
func (l *OpLog) ReadAll() ([]Record, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("timers: failed to read operation log: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	// Payloads are capped at 1 MiB but JSON escaping can inflate a line
	// several times over, so give the scanner generous headroom.
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			l.logger.Warn("skipping malformed log record",
				"path", l.path,
				"line", line,
				"error", err,
			)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("timers: failed to scan operation log: %w", err)
	}

	return records, nil
}

// Close flushes and closes the underlying file.
func (l *OpLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return fmt.Errorf("timers: failed to flush operation log: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("timers: failed to close operation log: %w", err)
	}
	return nil
}
