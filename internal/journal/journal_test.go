package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func collect(t *testing.T, j *Journal) []Event {
	t.Helper()
	var events []Event
	require.NoError(t, j.Replay(func(e Event) error {
		events = append(events, e)
		return nil
	}))
	return events
}

func TestAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path, false, WithClock(fixedClock))
	require.NoError(t, err)
	defer j.Close()

	_, err = uuid.Parse(j.Session())
	require.NoError(t, err, "session must be a uuid")

	e, err := j.Append(EventAdmit, "admission", 1, "Alice", false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Seq)
	assert.Equal(t, fixedClock().UnixMilli(), e.Timestamp)
	assert.True(t, VerifyChecksum(e))

	_, err = j.Append(EventDischarge, "admission", 1, "", false)
	require.NoError(t, err)

	events := collect(t, j)
	require.Len(t, events, 2)
	assert.Equal(t, EventAdmit, events[0].Type)
	assert.Equal(t, "Alice", events[0].Detail)
	assert.Equal(t, EventDischarge, events[1].Type)
	assert.Equal(t, j.Session(), events[1].Session)
	assert.Equal(t, uint64(2), j.GetLastSeq())
}

func TestBufferedUntilFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path, false, WithBuffer(10, time.Hour))
	require.NoError(t, err)

	_, err = j.Append(EventPush, "supply", 3, "", false)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw, "event should still be buffered")

	_, err = j.Append(EventConsume, "supply", 3, "", true)
	require.NoError(t, err)

	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	var first Event
	require.NoError(t, json.NewDecoder(bytes.NewReader(raw)).Decode(&first))
	assert.Equal(t, EventPush, first.Type)

	require.NoError(t, j.Close())
}

func TestSeqContinuesAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")

	j1, err := NewJournal(path, true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := j1.Append(EventRotate, "dispatch", i+1, "", false)
		require.NoError(t, err)
	}
	require.NoError(t, j1.Close())

	j2, err := NewJournal(path, true)
	require.NoError(t, err)
	defer j2.Close()
	assert.Equal(t, uint64(3), j2.GetLastSeq())
	assert.NotEqual(t, j1.Session(), j2.Session())

	e, err := j2.Append(EventRemove, "dispatch", 2, "", false)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), e.Seq)

	events := collect(t, j2)
	require.Len(t, events, 4)
	assert.Equal(t, j1.Session(), events[2].Session)
	assert.Equal(t, j2.Session(), events[3].Session)
}

func TestReplayDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path, true)
	require.NoError(t, err)
	_, err = j.Append(EventLogCase, "triage", 1, "Heart Attack", false)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal(raw, &e))
	e.Detail = "Sprain"
	tampered, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(tampered, '\n'), 0644))

	err = ReplayFile(path, func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint64(1), ce.Seq)
	assert.Contains(t, ce.Error(), "seq=1")
}

func TestReplayStopsAtCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path, true)
	require.NoError(t, err)
	_, err = j.Append(EventImport, "triage", 0, "2 patients", false)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"seq\":2,\"type\":")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var seen int
	err = ReplayFile(path, func(Event) error { seen++; return nil })
	assert.ErrorIs(t, err, ErrCorruptedJournal)
	assert.Equal(t, 1, seen)

	last, err := GetLastEvent(path)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, uint64(1), last.Seq)
}

func TestReplayHandlerErrorStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	j, err := NewJournal(path, true)
	require.NoError(t, err)
	defer j.Close()
	for i := 0; i < 3; i++ {
		_, err := j.Append(EventRegister, "dispatch", i+1, "", false)
		require.NoError(t, err)
	}

	stop := errors.New("stop")
	var seen int
	err = j.Replay(func(Event) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

type failingFile struct {
	writeErr error
	syncErr  error
	written  bytes.Buffer
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(p)
}

func (f *failingFile) Sync() error { return f.syncErr }

func (f *failingFile) Close() error { return nil }

func TestAppendReportsWriteFailure(t *testing.T) {
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.log"), true)
	require.NoError(t, err)
	ff := &failingFile{writeErr: errors.New("disk full")}
	j.file.Close()
	j.file = ff

	_, err = j.Append(EventAdmit, "admission", 1, "", false)
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, j.buffer, 1, "unwritten events stay buffered")

	// a transient failure must not poison later flushes
	ff.writeErr = nil
	require.NoError(t, j.Flush())
	assert.Empty(t, j.buffer)

	_, err = j.Append(EventDischarge, "admission", 1, "", true)
	require.NoError(t, err)

	dec := json.NewDecoder(&ff.written)
	var seqs []uint64
	for dec.More() {
		var e Event
		require.NoError(t, dec.Decode(&e))
		assert.True(t, VerifyChecksum(e))
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []uint64{1, 2}, seqs)

	require.NoError(t, j.Close())
	_, err = j.Append(EventAdmit, "admission", 2, "", false)
	assert.ErrorIs(t, err, ErrJournalClosed)
}
