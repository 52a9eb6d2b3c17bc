// ============================================================================
// Ambulance Duty Roster - circular rotation
// ============================================================================
//
// Package: internal/dispatch
// File: roster.go
// Purpose: Round-robin duty order for the ambulance fleet
//
// Storage:
//   An arena of nodes linked by index. `tail` is the index of the last
//   ambulance in rotation order (-1 when empty) and the head is always
//   nodes[tail].next. Freed slots go on a free list and are reused by
//   Register, so the arena only grows to the peak fleet size.
//
// Ring states:
//   RingEmpty  --Register-->  RingSingle  --Register-->  RingMulti
//   RingMulti  --Remove-->    RingSingle  --Remove-->    RingEmpty
//   Rotate is rejected in RingEmpty and RingSingle.
//
// Invariants:
//   - every live node's next is a live node; following next from the head
//     visits every ambulance once and returns to the head
//   - Rotate only moves `tail`; neighbours never change relative order
//
// ============================================================================

package dispatch

import (
	"fmt"
	"slices"

	"github.com/ChuLiYu/hospital-ops/internal/idgen"
	"github.com/ChuLiYu/hospital-ops/internal/shift"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// RingState is the coarse shape of the ring.
type RingState int

const (
	RingEmpty RingState = iota
	RingSingle
	RingMulti
)

func (s RingState) String() string {
	switch s {
	case RingEmpty:
		return "empty"
	case RingSingle:
		return "single"
	default:
		return "multi"
	}
}

const none = -1

type node struct {
	rec  types.Ambulance
	next int
}

// Roster is the ambulance rotation ring. It is not safe for concurrent use.
type Roster struct {
	nodes []node
	free  []int
	tail  int
	size  int
	ids   *idgen.Allocator
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{tail: none, ids: idgen.New()}
}

// Register adds an ambulance at the end of the rotation and returns its id.
// Vehicle tags are unique, compared case-sensitively.
func (r *Roster) Register(vehicle, operator, notes string) (int, error) {
	rec := types.Ambulance{
		Vehicle:  textutil.Clean(vehicle),
		Operator: textutil.Clean(operator),
		Notes:    textutil.Clean(notes),
	}
	if err := validate(rec); err != nil {
		return 0, err
	}
	if r.indexOfVehicle(rec.Vehicle) != none {
		return 0, fmt.Errorf("%w: vehicle %s is already registered", types.ErrDuplicate, rec.Vehicle)
	}

	rec.ID = r.ids.Next()
	r.link(rec)
	return rec.ID, nil
}

// Rotate hands duty to the next ambulance and returns the new head id.
// It is O(1): only the tail index moves.
func (r *Roster) Rotate() (int, error) {
	switch r.State() {
	case RingEmpty:
		return 0, fmt.Errorf("%w: no ambulances registered", types.ErrEmpty)
	case RingSingle:
		return 0, fmt.Errorf("%w: rotation needs at least two ambulances", types.ErrSingleElement)
	}
	r.tail = r.nodes[r.tail].next
	return r.nodes[r.nodes[r.tail].next].rec.ID, nil
}

// AssignShift sets the duty window of ambulance id.
func (r *Roster) AssignShift(id, start, end int) error {
	if err := (shift.Window{Start: start, End: end}).Validate(); err != nil {
		return err
	}
	i := r.indexOf(id)
	if i == none {
		return fmt.Errorf("%w: no ambulance with id %d", types.ErrNotFound, id)
	}
	r.nodes[i].rec.ShiftStart = start
	r.nodes[i].rec.ShiftEnd = end
	return nil
}

// RefreshDutyStatus recomputes every on-duty flag for minute-of-day now.
func (r *Roster) RefreshDutyStatus(now int) error {
	if now < 0 || now >= shift.MinutesPerDay {
		return fmt.Errorf("%w: minute of day %d", types.ErrInvalidInput, now)
	}
	r.each(func(i int) bool {
		rec := &r.nodes[i].rec
		rec.OnDuty = windowOf(*rec).Contains(now)
		return true
	})
	return nil
}

// Remove takes ambulance id out of the rotation.
func (r *Roster) Remove(id int) error {
	if r.tail == none {
		return fmt.Errorf("%w: no ambulance with id %d", types.ErrNotFound, id)
	}

	prev := r.tail
	cur := r.nodes[prev].next
	for n := 0; n < r.size; n++ {
		if r.nodes[cur].rec.ID == id {
			r.unlink(prev, cur)
			return nil
		}
		prev, cur = cur, r.nodes[cur].next
	}
	return fmt.Errorf("%w: no ambulance with id %d", types.ErrNotFound, id)
}

// Snapshot returns the ambulances from head to tail.
func (r *Roster) Snapshot() []types.Ambulance {
	out := make([]types.Ambulance, 0, r.size)
	r.each(func(i int) bool {
		out = append(out, r.nodes[i].rec)
		return true
	})
	return out
}

// Head returns the ambulance at the front of the rotation.
func (r *Roster) Head() (types.Ambulance, error) {
	if r.tail == none {
		return types.Ambulance{}, fmt.Errorf("%w: no ambulances registered", types.ErrEmpty)
	}
	return r.nodes[r.nodes[r.tail].next].rec, nil
}

// Get returns ambulance id.
func (r *Roster) Get(id int) (types.Ambulance, error) {
	i := r.indexOf(id)
	if i == none {
		return types.Ambulance{}, fmt.Errorf("%w: no ambulance with id %d", types.ErrNotFound, id)
	}
	return r.nodes[i].rec, nil
}

// IsOnDuty reports the stored on-duty flag of ambulance id, as of the last
// RefreshDutyStatus.
func (r *Roster) IsOnDuty(id int) (bool, error) {
	rec, err := r.Get(id)
	if err != nil {
		return false, err
	}
	return rec.OnDuty, nil
}

// OnDuty returns the ambulances flagged on duty, in rotation order.
func (r *Roster) OnDuty() []types.Ambulance {
	var out []types.Ambulance
	for _, rec := range r.Snapshot() {
		if rec.OnDuty {
			out = append(out, rec)
		}
	}
	return out
}

// ByShiftStart returns the ambulances ordered by shift start. Ties keep
// rotation order.
func (r *Roster) ByShiftStart() []types.Ambulance {
	out := r.Snapshot()
	slices.SortStableFunc(out, func(a, b types.Ambulance) int {
		return a.ShiftStart - b.ShiftStart
	})
	return out
}

// Restore rebuilds the ring from records in head-to-tail order. Rows with
// missing fields, bad ids, out-of-range windows or a repeated id or vehicle
// tag are skipped.
func (r *Roster) Restore(records []types.Ambulance) (skipped int) {
	r.nodes = r.nodes[:0]
	r.free = r.free[:0]
	r.tail = none
	r.size = 0
	r.ids.Reset()

	ids := make(map[int]bool, len(records))
	for _, rec := range records {
		rec.Vehicle = textutil.Clean(rec.Vehicle)
		rec.Operator = textutil.Clean(rec.Operator)
		rec.Notes = textutil.Clean(rec.Notes)
		if rec.ID <= 0 || ids[rec.ID] || validate(rec) != nil ||
			!storedWindowOK(rec) || r.indexOfVehicle(rec.Vehicle) != none {
			skipped++
			continue
		}
		ids[rec.ID] = true
		r.link(rec)
		r.ids.Observe(rec.ID)
	}
	return skipped
}

// Len returns the number of ambulances.
func (r *Roster) Len() int { return r.size }

// NextID returns the id the next registration will get.
func (r *Roster) NextID() int { return r.ids.Peek() }

// State returns the ring state.
func (r *Roster) State() RingState {
	switch r.size {
	case 0:
		return RingEmpty
	case 1:
		return RingSingle
	default:
		return RingMulti
	}
}

// ============================================================================
// Ring internals
// ============================================================================

// link inserts rec after the tail and makes it the new tail.
func (r *Roster) link(rec types.Ambulance) {
	i := r.alloc(rec)
	if r.tail == none {
		r.nodes[i].next = i
	} else {
		r.nodes[i].next = r.nodes[r.tail].next
		r.nodes[r.tail].next = i
	}
	r.tail = i
	r.size++
}

// unlink removes cur, whose predecessor is prev.
func (r *Roster) unlink(prev, cur int) {
	if prev == cur {
		r.tail = none
	} else {
		r.nodes[prev].next = r.nodes[cur].next
		if cur == r.tail {
			r.tail = prev
		}
	}
	r.nodes[cur] = node{next: none}
	r.free = append(r.free, cur)
	r.size--
}

func (r *Roster) alloc(rec types.Ambulance) int {
	if n := len(r.free); n > 0 {
		i := r.free[n-1]
		r.free = r.free[:n-1]
		r.nodes[i] = node{rec: rec, next: none}
		return i
	}
	r.nodes = append(r.nodes, node{rec: rec, next: none})
	return len(r.nodes) - 1
}

// each visits node indexes from head to tail until fn returns false.
func (r *Roster) each(fn func(i int) bool) {
	if r.tail == none {
		return
	}
	i := r.nodes[r.tail].next
	for n := 0; n < r.size; n++ {
		if !fn(i) {
			return
		}
		i = r.nodes[i].next
	}
}

func (r *Roster) indexOf(id int) int {
	found := none
	r.each(func(i int) bool {
		if r.nodes[i].rec.ID == id {
			found = i
			return false
		}
		return true
	})
	return found
}

func (r *Roster) indexOfVehicle(vehicle string) int {
	found := none
	r.each(func(i int) bool {
		if r.nodes[i].rec.Vehicle == vehicle {
			found = i
			return false
		}
		return true
	})
	return found
}

func validate(rec types.Ambulance) error {
	if rec.Vehicle == "" || rec.Operator == "" {
		return fmt.Errorf("%w: vehicle and operator must not be empty", types.ErrInvalidInput)
	}
	if textutil.HasControl(rec.Vehicle) || textutil.HasControl(rec.Operator) || textutil.HasControl(rec.Notes) {
		return fmt.Errorf("%w: fields must not contain line breaks or control characters", types.ErrInvalidInput)
	}
	if textutil.HasSeparator(rec.Vehicle) || textutil.HasSeparator(rec.Operator) {
		return fmt.Errorf("%w: vehicle and operator must not contain %q", types.ErrInvalidInput, textutil.Separator)
	}
	return nil
}

func windowOf(rec types.Ambulance) shift.Window {
	return shift.Window{Start: rec.ShiftStart, End: rec.ShiftEnd}
}

// storedWindowOK accepts the windows a file may hold: unassigned, normal,
// or overnight ones written by older tools.
func storedWindowOK(rec types.Ambulance) bool {
	w := windowOf(rec)
	if !w.Assigned() || w.Overnight() {
		return w.Start >= 0 && w.Start < shift.MinutesPerDay && w.End >= 0 && w.End <= shift.MinutesPerDay
	}
	return w.Validate() == nil
}
