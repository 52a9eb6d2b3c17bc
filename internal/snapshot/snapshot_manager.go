package snapshot

// ============================================================================
// Flat-file snapshot of one engine
// Responsibilities:
// 1. Rewrite the whole file (header + one row per record) on every mutation
// 2. Atomic write through temp file + rename so a crash leaves the last save
// 3. Tolerant load: skip the header, blank lines, and legacy headerless files
// ============================================================================

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ChuLiYu/hospital-ops/internal/textutil"
)

var (
	ErrNoHeader = errors.New("snapshot header is empty")
)

// Row is one non-blank data line of a snapshot file.
type Row struct {
	Line int    // 1-based line number in the file
	Text string // raw line without the trailing newline
}

// Manager reads and writes one snapshot file.
type Manager struct {
	path   string
	header string
	mu     sync.Mutex
}

// NewManager returns a manager for path whose files start with header.
func NewManager(path, header string) *Manager {
	return &Manager{
		path:   path,
		header: header,
	}
}

// Write replaces the file with header followed by rows, fields joined by
// the separator.
//
// Write flow:
// 1. Render into a temp file next to the target (.tmp)
// 2. Rename over the target
func (m *Manager) Write(rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.header == "" {
		return ErrNoHeader
	}

	var b strings.Builder
	b.WriteString(m.header)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, textutil.Separator))
		b.WriteByte('\n')
	}

	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	return nil
}

// Load returns the data rows of the file.
//
// Behaviour:
//   - a missing file is a first start: no rows, no error
//   - blank lines are skipped
//   - the first line is skipped when it is a header (its first field is not
//     an integer id), so files written without a header still load
func (m *Manager) Load() ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var rows []Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	seenContent := false
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		first := !seenContent
		seenContent = true
		if first && isHeader(text) {
			continue
		}
		rows = append(rows, Row{Line: lineNo, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return rows, nil
}

// Exists reports whether the snapshot file is present.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// GetPath returns the snapshot file path.
func (m *Manager) GetPath() string {
	return m.path
}

// Fields splits text into at most n fields. The last field keeps the rest of
// the line, separators included.
func Fields(text string, n int) []string {
	return strings.SplitN(text, textutil.Separator, n)
}

// Int parses a numeric field, ignoring surrounding whitespace.
func Int(field string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(field))
}

// Bool parses a "0"/"1" field. Any other non-zero integer counts as true.
func Bool(field string) (bool, error) {
	v, err := Int(field)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// FormatBool renders b as "1" or "0".
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func isHeader(text string) bool {
	first, _, _ := strings.Cut(text, textutil.Separator)
	_, err := Int(first)
	return err != nil
}
