// ============================================================================
// Medical Supply Stack - unbounded LIFO
// ============================================================================
//
// Package: internal/supply
// File: stack.go
// Purpose: Stock is used from the most recently added batch first
//
// Storage:
//   A growable slice whose last element is the top. Push appends, a full
//   consumption truncates; no node lifetimes to manage.
//
// Consumption:
//   ConsumeFromTop only ever touches the top record. A partial amount leaves
//   the record in place with a lower quantity; the exact remaining amount
//   removes it. Quantities never go negative.
//
// ============================================================================

package supply

import (
	"fmt"
	"time"

	"github.com/ChuLiYu/hospital-ops/internal/idgen"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// ExpiryLayout is the accepted expiry date format.
const ExpiryLayout = "2006-01-02"

// Stack is the supply inventory. It is not safe for concurrent use.
type Stack struct {
	items []types.Supply // bottom .. top
	ids   *idgen.Allocator
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{ids: idgen.New()}
}

// Push places a new stock record on top and returns its id.
func (s *Stack) Push(name string, quantity int, batch, expiry, notes string) (int, error) {
	item := types.Supply{
		Name:     textutil.Clean(name),
		Quantity: quantity,
		Batch:    textutil.Clean(batch),
		Expiry:   textutil.Clean(expiry),
		Notes:    textutil.Clean(notes),
	}
	if err := validate(item); err != nil {
		return 0, err
	}

	item.ID = s.ids.Next()
	s.items = append(s.items, item)
	return item.ID, nil
}

// ConsumeFromTop uses amount units of the top record and returns what is
// left of it. Using the whole quantity removes the record.
func (s *Stack) ConsumeFromTop(amount int) (int, error) {
	if len(s.items) == 0 {
		return 0, fmt.Errorf("%w: supply stack is empty", types.ErrEmpty)
	}
	top := &s.items[len(s.items)-1]
	if amount <= 0 || amount > top.Quantity {
		return top.Quantity, fmt.Errorf("%w: %d not in 1..%d for %s",
			types.ErrInvalidAmount, amount, top.Quantity, top.Name)
	}

	top.Quantity -= amount
	remaining := top.Quantity
	if remaining == 0 {
		s.items[len(s.items)-1] = types.Supply{}
		s.items = s.items[:len(s.items)-1]
	}
	return remaining, nil
}

// PeekTop returns the top record without changing the stack.
func (s *Stack) PeekTop() (types.Supply, error) {
	if len(s.items) == 0 {
		return types.Supply{}, fmt.Errorf("%w: supply stack is empty", types.ErrEmpty)
	}
	return s.items[len(s.items)-1], nil
}

// Snapshot returns the records from top to bottom.
func (s *Stack) Snapshot() []types.Supply {
	out := make([]types.Supply, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out
}

// Restore rebuilds the stack from records listed top to bottom, the order
// Snapshot produces. Invalid rows and duplicate ids are skipped.
func (s *Stack) Restore(topToBottom []types.Supply) (skipped int) {
	s.items = s.items[:0]
	s.ids.Reset()

	seen := make(map[int]bool, len(topToBottom))
	kept := make([]types.Supply, 0, len(topToBottom))
	for _, item := range topToBottom {
		if item.ID <= 0 || seen[item.ID] || validate(item) != nil {
			skipped++
			continue
		}
		seen[item.ID] = true
		kept = append(kept, item)
		s.ids.Observe(item.ID)
	}
	for i := len(kept) - 1; i >= 0; i-- {
		s.items = append(s.items, kept[i])
	}
	return skipped
}

// Len returns the number of records.
func (s *Stack) Len() int { return len(s.items) }

// TotalUnits returns the sum of all quantities.
func (s *Stack) TotalUnits() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// NextID returns the id the next push will get.
func (s *Stack) NextID() int { return s.ids.Peek() }

func validate(item types.Supply) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name must not be empty", types.ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d must be positive", types.ErrInvalidInput, item.Quantity)
	}
	for _, field := range []string{item.Name, item.Batch, item.Expiry, item.Notes} {
		if textutil.HasControl(field) {
			return fmt.Errorf("%w: %q must not contain line breaks or control characters", types.ErrInvalidInput, field)
		}
	}
	for _, field := range []string{item.Name, item.Batch, item.Expiry} {
		if textutil.HasSeparator(field) {
			return fmt.Errorf("%w: %q must not contain %q", types.ErrInvalidInput, field, textutil.Separator)
		}
	}
	if item.Expiry != "" {
		if _, err := time.Parse(ExpiryLayout, item.Expiry); err != nil {
			return fmt.Errorf("%w: expiry %q is not YYYY-MM-DD", types.ErrInvalidInput, item.Expiry)
		}
	}
	return nil
}
