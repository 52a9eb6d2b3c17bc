package journal

// ============================================================================
// Mutation journal
// Responsibilities:
// 1. Append one event per successful mutation (append-only JSON lines)
// 2. Replay the history with checksum verification
// 3. Continue the sequence across process runs
//
// The journal is an audit trail. The flat files stay the source of truth.
// ============================================================================

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileInterface is the subset of *os.File the journal writes through.
// Tests substitute failing files.
type FileInterface interface {
	Write(p []byte) (n int, err error)
	Sync() error
	Close() error
}

// Journal is an append-only event log.
type Journal struct {
	mu           sync.Mutex
	file         FileInterface
	path         string
	seq          uint64
	session      string
	syncOnAppend bool
	closed       bool
	now          func() time.Time

	buffer        []Event
	bufferSize    int
	lastFlushTime time.Time
	flushInterval time.Duration
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithBuffer sets how many events are held before a flush and the longest
// time an event may wait.
func WithBuffer(size int, interval time.Duration) Option {
	return func(j *Journal) {
		if size > 0 {
			j.bufferSize = size
		}
		if interval > 0 {
			j.flushInterval = interval
		}
	}
}

// ============================================================================
// Public interface
// ============================================================================

/*
NewJournal opens or creates the journal at path.

Behaviour:
- a new file starts at seq 0
- an existing file continues after its last readable event
- the file is opened O_APPEND so earlier history is never overwritten
- every journal gets a fresh session id
*/
func NewJournal(path string, syncOnAppend bool, opts ...Option) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal dir: %w", err)
		}
	}

	var seq uint64
	last, err := GetLastEvent(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if last != nil {
		seq = last.Seq
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		file:          file,
		path:          path,
		seq:           seq,
		session:       uuid.NewString(),
		syncOnAppend:  syncOnAppend,
		now:           time.Now,
		buffer:        make([]Event, 0, 64),
		bufferSize:    64,
		lastFlushTime: time.Now(),
		flushInterval: time.Second,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Append records one mutation.
//
// The event is buffered; it reaches the file when forceFlush is set, the
// journal syncs on every append, the buffer is full or the flush interval
// has passed.
func (j *Journal) Append(eventType EventType, engine string, recordID int, detail string, forceFlush bool) (Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return Event{}, ErrJournalClosed
	}

	j.seq++
	event := Event{
		Seq:       j.seq,
		Type:      eventType,
		Engine:    engine,
		RecordID:  recordID,
		Detail:    detail,
		Session:   j.session,
		Timestamp: j.now().UnixMilli(),
	}
	event.Checksum = CalculateChecksum(event)
	j.buffer = append(j.buffer, event)

	needFlush := forceFlush || j.syncOnAppend ||
		len(j.buffer) >= j.bufferSize || time.Since(j.lastFlushTime) > j.flushInterval
	if needFlush {
		return event, j.flushLocked()
	}
	return event, nil
}

// Flush writes buffered events and syncs the file.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	return j.flushLocked()
}

// Replay reads every event from the start of the file.
//
// Behaviour:
// - buffered events are flushed first so the replay sees them
// - every checksum is verified
// - the first undecodable line, bad checksum or handler error stops the replay
func (j *Journal) Replay(handler EventHandler) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.closed {
		if err := j.flushLocked(); err != nil {
			return err
		}
	}
	return ReplayFile(j.path, handler)
}

// Close flushes and closes the file. A closed journal cannot be reused.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	flushErr := j.flushLocked()
	closeErr := j.file.Close()
	return errors.Join(flushErr, closeErr)
}

// GetLastSeq returns the sequence number of the latest event.
func (j *Journal) GetLastSeq() uint64 {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

// Session returns the id stamped on this run's events.
func (j *Journal) Session() string {
	return j.session
}

// GetPath returns the journal file path.
func (j *Journal) GetPath() string {
	return j.path
}

// ============================================================================
// File helpers
// ============================================================================

// ReplayFile replays the journal at path without opening it for writing.
func ReplayFile(path string, handler EventHandler) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(bufio.NewReader(file))
	var lastSeq uint64
	for {
		var event Event
		offset := decoder.InputOffset()
		if err := decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return nil
			}
			return &CorruptionError{AfterSeq: lastSeq, Offset: offset, Cause: err}
		}

		if !VerifyChecksum(event) {
			return &ChecksumError{Seq: event.Seq, Expected: CalculateChecksum(event), Actual: event.Checksum}
		}
		if err := handler(event); err != nil {
			return err
		}
		lastSeq = event.Seq
	}
}

// GetLastEvent returns the last readable event of the journal at path, or
// nil for an empty file. Scanning stops at the first damaged line.
func GetLastEvent(path string) (*Event, error) {
	var last *Event
	err := ReplayFile(path, func(e Event) error {
		last = &e
		return nil
	})
	var corrupt *CorruptionError
	var mismatch *ChecksumError
	if errors.As(err, &corrupt) || errors.As(err, &mismatch) {
		return last, nil
	}
	if err != nil {
		return nil, err
	}
	return last, nil
}

// flushLocked writes the buffer and syncs. The caller holds j.mu.
func (j *Journal) flushLocked() error {
	for i, event := range j.buffer {
		line, err := json.Marshal(event)
		if err == nil {
			_, err = j.file.Write(append(line, '\n'))
		}
		if err != nil {
			j.buffer = j.buffer[:copy(j.buffer, j.buffer[i:])]
			return fmt.Errorf("journal: write seq=%d: %w", event.Seq, err)
		}
	}
	j.buffer = j.buffer[:0]
	j.lastFlushTime = time.Now()
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("journal: sync: %w", err)
	}
	return nil
}
