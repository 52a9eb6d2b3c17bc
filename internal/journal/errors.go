package journal

// ============================================================================
// Journal Error Definitions
// ============================================================================

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptedJournal indicates a line that is not valid JSON
	ErrCorruptedJournal = errors.New("journal: file is corrupted")

	// ErrChecksumMismatch indicates an event whose checksum does not match
	ErrChecksumMismatch = errors.New("journal: checksum mismatch")

	// ErrJournalClosed indicates use after Close
	ErrJournalClosed = errors.New("journal: already closed")
)

// ChecksumError reports which event failed verification.
type ChecksumError struct {
	Seq      uint64 // Sequence number of the failed event
	Expected uint32 // Checksum computed from the fields
	Actual   uint32 // Checksum stored in the file
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("journal: checksum mismatch at seq=%d (expected=0x%08x, got=0x%08x)", e.Seq, e.Expected, e.Actual)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// CorruptionError reports an undecodable line.
type CorruptionError struct {
	AfterSeq uint64 // Last good sequence number before the damage
	Offset   int64  // Byte offset in file
	Cause    error  // Underlying decode error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("journal: corrupted after seq=%d at offset %d: %v", e.AfterSeq, e.Offset, e.Cause)
}

func (e *CorruptionError) Unwrap() []error {
	return []error{ErrCorruptedJournal, e.Cause}
}
