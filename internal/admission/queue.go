// ============================================================================
// Patient Admission Queue - bounded FIFO
// ============================================================================
//
// Package: internal/admission
// File: queue.go
// Purpose: Keep waiting patients in strict arrival order
//
// Storage:
//   A fixed arena of `capacity` slots used as a ring buffer. `head` is the
//   slot of the oldest patient and `size` the live count. The arena is
//   allocated once and never grows; a full queue rejects new patients rather
//   than overwriting the oldest one.
//
// Operations:
//   Add          - O(1), append at the logical rear
//   RemoveOldest - O(1), take from the logical front
//   FindByID     - O(n), scan from the front
//   Snapshot     - O(n), front to rear
//
// Failed calls never modify the queue.
//
// ============================================================================

package admission

import (
	"fmt"

	"github.com/ChuLiYu/hospital-ops/internal/idgen"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Queue is the admission queue. It is not safe for concurrent use.
type Queue struct {
	slots []types.Patient // fixed arena, len == capacity
	head  int             // slot of the oldest patient
	size  int             // live count
	ids   *idgen.Allocator
}

// New returns an empty queue holding at most capacity patients.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		slots: make([]types.Patient, capacity),
		ids:   idgen.New(),
	}
}

// Add admits a patient at the rear and returns the new id.
func (q *Queue) Add(name, condition string) (int, error) {
	name = textutil.Clean(name)
	condition = textutil.Clean(condition)

	if name == "" || condition == "" {
		return 0, fmt.Errorf("%w: name and condition must not be empty", types.ErrInvalidInput)
	}
	if textutil.HasControl(name) || textutil.HasControl(condition) {
		return 0, fmt.Errorf("%w: name and condition must not contain line breaks or control characters", types.ErrInvalidInput)
	}
	if textutil.HasSeparator(name) {
		return 0, fmt.Errorf("%w: name must not contain %q", types.ErrInvalidInput, textutil.Separator)
	}
	if q.IsFull() {
		return 0, fmt.Errorf("%w: queue holds %d patients", types.ErrFull, q.Cap())
	}

	id := q.ids.Next()
	q.push(types.Patient{ID: id, Name: name, Condition: condition})
	return id, nil
}

// RemoveOldest discharges the patient at the front.
func (q *Queue) RemoveOldest() (types.Patient, error) {
	if q.size == 0 {
		return types.Patient{}, fmt.Errorf("%w: admission queue is empty", types.ErrEmpty)
	}

	p := q.slots[q.head]
	q.slots[q.head] = types.Patient{}
	q.head = (q.head + 1) % len(q.slots)
	q.size--
	return p, nil
}

// FindByID returns the patient with id and its 1-based queue position.
func (q *Queue) FindByID(id int) (types.Patient, int, error) {
	if id <= 0 {
		return types.Patient{}, 0, fmt.Errorf("%w: id %d", types.ErrInvalidInput, id)
	}
	for i := 0; i < q.size; i++ {
		p := q.at(i)
		if p.ID == id {
			return p, i + 1, nil
		}
	}
	return types.Patient{}, 0, fmt.Errorf("%w: no patient with id %d", types.ErrNotFound, id)
}

// Snapshot returns the waiting patients from front to rear.
func (q *Queue) Snapshot() []types.Patient {
	out := make([]types.Patient, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.at(i))
	}
	return out
}

// Restore replaces the queue content with records in front-to-rear order.
// Invalid rows, duplicate ids and rows beyond capacity are skipped; the id
// allocator resumes after the highest id seen.
func (q *Queue) Restore(records []types.Patient) (skipped int) {
	for i := range q.slots {
		q.slots[i] = types.Patient{}
	}
	q.head, q.size = 0, 0
	q.ids.Reset()

	seen := make(map[int]bool, len(records))
	for _, p := range records {
		p.Name = textutil.Clean(p.Name)
		p.Condition = textutil.Clean(p.Condition)
		if p.ID <= 0 || p.Name == "" || p.Condition == "" || seen[p.ID] || q.IsFull() ||
			textutil.HasControl(p.Name) || textutil.HasControl(p.Condition) {
			skipped++
			continue
		}
		seen[p.ID] = true
		q.push(p)
		q.ids.Observe(p.ID)
	}
	return skipped
}

// Len returns the live count.
func (q *Queue) Len() int { return q.size }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return len(q.slots) }

// IsFull reports whether Add would be rejected with ErrFull.
func (q *Queue) IsFull() bool { return q.size == len(q.slots) }

// NextID returns the id the next admission will get.
func (q *Queue) NextID() int { return q.ids.Peek() }

func (q *Queue) push(p types.Patient) {
	rear := (q.head + q.size) % len(q.slots)
	q.slots[rear] = p
	q.size++
}

func (q *Queue) at(i int) types.Patient {
	return q.slots[(q.head+i)%len(q.slots)]
}
