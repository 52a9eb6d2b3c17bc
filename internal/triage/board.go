// ============================================================================
// Emergency Triage Board - priority-ordered sequence
// ============================================================================
//
// Package: internal/triage
// File: board.go
// Purpose: Keep emergency cases sorted so the most urgent is always first
//
// Storage:
//   A fixed arena of `capacity` entries with an explicit length. Each entry
//   carries the case and its insertion sequence number. Lower priority value
//   means more urgent (1 = critical). Among equal priorities the earlier
//   insertion comes first, and that order survives UpdatePriority.
//
// Operations:
//   Insert            - O(n), shift larger priorities right
//   ExtractMostUrgent - O(n), shift the rest forward
//   UpdatePriority    - O(n log n), stable re-sort by (priority, seq)
//   ImportFrom        - all-or-nothing batch
//
// ============================================================================

package triage

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ChuLiYu/hospital-ops/internal/idgen"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

const (
	DefaultCapacity = 100
	// DefaultImportPriority is the priority given to backfilled patients.
	DefaultImportPriority = 6
)

type entry struct {
	rec types.EmergencyCase
	seq uint64
}

// Board is the triage sequence. It is not safe for concurrent use.
type Board struct {
	entries     []entry // fixed arena, len == capacity
	size        int
	maxPriority int // 0 = unbounded
	seq         uint64
	ids         *idgen.Allocator
}

// New returns an empty board. A non-positive capacity means DefaultCapacity
// and maxPriority 0 leaves the upper bound open.
func New(capacity, maxPriority int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxPriority < 0 {
		maxPriority = 0
	}
	return &Board{
		entries:     make([]entry, capacity),
		maxPriority: maxPriority,
		ids:         idgen.New(),
	}
}

// Insert logs a new case and returns its id. The case goes after every
// existing case with the same priority.
func (b *Board) Insert(subject, category string, priority int) (int, error) {
	rec := types.EmergencyCase{
		Subject:  textutil.Clean(subject),
		Category: textutil.Clean(category),
		Priority: priority,
	}
	if err := b.validate(rec); err != nil {
		return 0, err
	}
	if b.size == len(b.entries) {
		return 0, fmt.Errorf("%w: triage board holds %d cases", types.ErrFull, len(b.entries))
	}

	rec.ID = b.nextFreeID()
	b.place(rec)
	return rec.ID, nil
}

// ExtractMostUrgent removes and returns the first case.
func (b *Board) ExtractMostUrgent() (types.EmergencyCase, error) {
	if b.size == 0 {
		return types.EmergencyCase{}, fmt.Errorf("%w: no emergency cases", types.ErrEmpty)
	}
	rec := b.entries[0].rec
	copy(b.entries[:b.size-1], b.entries[1:b.size])
	b.size--
	b.entries[b.size] = entry{}
	return rec, nil
}

// UpdatePriority changes the priority of case id and re-sorts. Ties keep the
// order in which the cases were first inserted.
func (b *Board) UpdatePriority(id, priority int) error {
	if err := b.checkPriority(priority); err != nil {
		return err
	}
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: no emergency case with id %d", types.ErrNotFound, id)
	}
	b.entries[i].rec.Priority = priority
	b.sort()
	return nil
}

// FindBySubject returns the cases whose subject matches s, ignoring case.
func (b *Board) FindBySubject(s string) []types.EmergencyCase {
	return b.filter(func(rec types.EmergencyCase) bool {
		return textutil.EqualFold(rec.Subject, s)
	})
}

// FindByCategory returns the cases whose category matches c, ignoring case.
func (b *Board) FindByCategory(c string) []types.EmergencyCase {
	return b.filter(func(rec types.EmergencyCase) bool {
		return textutil.EqualFold(rec.Category, c)
	})
}

// Snapshot returns the cases in ascending priority.
func (b *Board) Snapshot() []types.EmergencyCase {
	out := make([]types.EmergencyCase, b.size)
	for i := range out {
		out[i] = b.entries[i].rec
	}
	return out
}

// ImportFrom backfills patients as cases with defaultPriority, keeping their
// ids. Patients whose id is already on the board, or repeated within the
// batch, are left out. The batch is all-or-nothing: if the new cases do not
// fit, nothing is imported and ErrFull is returned.
func (b *Board) ImportFrom(records []types.Patient, defaultPriority int) (imported int, err error) {
	if err := b.checkPriority(defaultPriority); err != nil {
		return 0, err
	}

	seen := make(map[int]bool, b.size+len(records))
	for i := 0; i < b.size; i++ {
		seen[b.entries[i].rec.ID] = true
	}

	var batch []types.EmergencyCase
	for _, p := range records {
		if p.ID <= 0 || seen[p.ID] {
			continue
		}
		rec := types.EmergencyCase{
			ID:       p.ID,
			Subject:  textutil.Clean(p.Name),
			Category: importCategory(p.Condition),
			Priority: defaultPriority,
		}
		if b.validate(rec) != nil {
			continue
		}
		seen[p.ID] = true
		batch = append(batch, rec)
	}

	if free := len(b.entries) - b.size; len(batch) > free {
		return 0, fmt.Errorf("%w: %d new cases, room for %d", types.ErrFull, len(batch), free)
	}
	for _, rec := range batch {
		b.place(rec)
		b.ids.Observe(rec.ID)
	}
	return len(batch), nil
}

// Restore rebuilds the board from persisted cases. Rows that are invalid,
// repeat an id or do not fit are skipped. File order breaks priority ties.
func (b *Board) Restore(records []types.EmergencyCase) (skipped int) {
	clear(b.entries)
	b.size = 0
	b.seq = 0
	b.ids.Reset()

	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		rec.Subject = textutil.Clean(rec.Subject)
		rec.Category = textutil.Clean(rec.Category)
		if rec.ID <= 0 || seen[rec.ID] || b.validate(rec) != nil || b.size == len(b.entries) {
			skipped++
			continue
		}
		seen[rec.ID] = true
		b.entries[b.size] = entry{rec: rec, seq: b.nextSeq()}
		b.size++
		b.ids.Observe(rec.ID)
	}
	b.sort()
	return skipped
}

// Len returns the number of cases.
func (b *Board) Len() int { return b.size }

// Cap returns the board capacity.
func (b *Board) Cap() int { return len(b.entries) }

// MaxPriority returns the configured upper bound, 0 when open.
func (b *Board) MaxPriority() int { return b.maxPriority }

// NextID returns the id the next logged case will get.
func (b *Board) NextID() int { return b.ids.Peek() }

// place inserts rec after every case with priority <= rec.Priority.
func (b *Board) place(rec types.EmergencyCase) {
	i := b.size - 1
	for i >= 0 && b.entries[i].rec.Priority > rec.Priority {
		b.entries[i+1] = b.entries[i]
		i--
	}
	b.entries[i+1] = entry{rec: rec, seq: b.nextSeq()}
	b.size++
}

func (b *Board) sort() {
	slices.SortStableFunc(b.entries[:b.size], func(x, y entry) int {
		if c := cmp.Compare(x.rec.Priority, y.rec.Priority); c != 0 {
			return c
		}
		return cmp.Compare(x.seq, y.seq)
	})
}

func (b *Board) nextSeq() uint64 {
	b.seq++
	return b.seq
}

// nextFreeID skips ids taken by imported cases.
func (b *Board) nextFreeID() int {
	for {
		id := b.ids.Next()
		if b.indexOf(id) < 0 {
			return id
		}
	}
}

func (b *Board) indexOf(id int) int {
	for i := 0; i < b.size; i++ {
		if b.entries[i].rec.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) filter(match func(types.EmergencyCase) bool) []types.EmergencyCase {
	var out []types.EmergencyCase
	for i := 0; i < b.size; i++ {
		if match(b.entries[i].rec) {
			out = append(out, b.entries[i].rec)
		}
	}
	return out
}

// importCategory turns a patient condition into a category. Conditions may
// hold commas; categories may not. Control characters become spaces.
func importCategory(condition string) string {
	return strings.ReplaceAll(textutil.StripControl(condition), textutil.Separator, ";")
}

func (b *Board) validate(rec types.EmergencyCase) error {
	if rec.Subject == "" || rec.Category == "" {
		return fmt.Errorf("%w: subject and category must not be empty", types.ErrInvalidInput)
	}
	if textutil.HasControl(rec.Subject) || textutil.HasControl(rec.Category) {
		return fmt.Errorf("%w: subject and category must not contain line breaks or control characters", types.ErrInvalidInput)
	}
	if textutil.HasSeparator(rec.Subject) || textutil.HasSeparator(rec.Category) {
		return fmt.Errorf("%w: subject and category must not contain %q", types.ErrInvalidInput, textutil.Separator)
	}
	return b.checkPriority(rec.Priority)
}

func (b *Board) checkPriority(p int) error {
	if p < 1 || (b.maxPriority > 0 && p > b.maxPriority) {
		if b.maxPriority > 0 {
			return fmt.Errorf("%w: priority %d outside 1..%d", types.ErrInvalidInput, p, b.maxPriority)
		}
		return fmt.Errorf("%w: priority %d must be positive", types.ErrInvalidInput, p)
	}
	return nil
}
