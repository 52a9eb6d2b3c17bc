package admission

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// ============================================================================
// Test helpers
// ============================================================================

func mustAdd(t *testing.T, q *Queue, name, condition string) int {
	t.Helper()
	id, err := q.Add(name, condition)
	require.NoError(t, err)
	return id
}

func names(patients []types.Patient) []string {
	out := make([]string, 0, len(patients))
	for _, p := range patients {
		out = append(out, p.Name)
	}
	return out
}

// ============================================================================
// Unit tests
// ============================================================================

func TestNewQueue(t *testing.T) {
	q := New(0)
	assert.Equal(t, DefaultCapacity, q.Cap())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 1, q.NextID())
	assert.Empty(t, q.Snapshot())

	assert.Equal(t, 5, New(5).Cap())
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*Queue)
		patient   string
		condition string
		wantID    int
		wantErr   error
	}{
		{
			name:      "first admission gets id 1",
			setup:     func(q *Queue) {},
			patient:   "Alice",
			condition: "Fever",
			wantID:    1,
		},
		{
			name:      "ids keep increasing",
			setup:     func(q *Queue) { q.Add("Alice", "Fever") },
			patient:   "Bob",
			condition: "Cough",
			wantID:    2,
		},
		{
			name:      "duplicate names are allowed",
			setup:     func(q *Queue) { q.Add("Alice", "Fever") },
			patient:   "Alice",
			condition: "Fever",
			wantID:    2,
		},
		{
			name:      "condition may hold commas",
			setup:     func(q *Queue) {},
			patient:   "Eve",
			condition: "Fracture, left wrist",
			wantID:    1,
		},
		{
			name:      "blank name rejected",
			setup:     func(q *Queue) {},
			patient:   "   ",
			condition: "Fever",
			wantErr:   types.ErrInvalidInput,
		},
		{
			name:      "blank condition rejected",
			setup:     func(q *Queue) {},
			patient:   "Alice",
			condition: "\t",
			wantErr:   types.ErrInvalidInput,
		},
		{
			name:      "line break in condition rejected",
			setup:     func(q *Queue) {},
			patient:   "Bob",
			condition: "cough\n77,Mallory,forged",
			wantErr:   types.ErrInvalidInput,
		},
		{
			name:      "control character in name rejected",
			setup:     func(q *Queue) {},
			patient:   "Bo\rb",
			condition: "Fever",
			wantErr:   types.ErrInvalidInput,
		},
		{
			name:      "separator in name rejected",
			setup:     func(q *Queue) {},
			patient:   "Doe, Jane",
			condition: "Fever",
			wantErr:   types.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(10)
			tt.setup(q)
			before := q.Snapshot()

			id, err := q.Add(tt.patient, tt.condition)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, q.Snapshot(), "failed add must not change the queue")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, len(before)+1, q.Len())
		})
	}
}

func TestAddTrimsFields(t *testing.T) {
	q := New(3)
	id := mustAdd(t, q, "  Alice  ", " Fever ")

	p, pos, err := q.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, types.Patient{ID: id, Name: "Alice", Condition: "Fever"}, p)
	assert.Equal(t, 1, pos)
}

func TestAddBeyondCapacity(t *testing.T) {
	q := New(3)
	mustAdd(t, q, "A", "x")
	mustAdd(t, q, "B", "x")
	mustAdd(t, q, "C", "x")

	for i := 0; i < 3; i++ {
		_, err := q.Add("D", "x")
		assert.ErrorIs(t, err, types.ErrFull)
		assert.Equal(t, 3, q.Len(), "live count must not change")
	}
	assert.Equal(t, []string{"A", "B", "C"}, names(q.Snapshot()), "oldest record must not be overwritten")
	assert.Equal(t, 4, q.NextID(), "rejected add must not consume an id")
}

func TestRemovalOrderEqualsAddOrder(t *testing.T) {
	q := New(50)
	var want []int
	for i := 0; i < 50; i++ {
		want = append(want, mustAdd(t, q, fmt.Sprintf("patient-%02d", i), "routine"))
	}

	var got []int
	for q.Len() > 0 {
		p, err := q.RemoveOldest()
		require.NoError(t, err)
		got = append(got, p.ID)
	}
	assert.Equal(t, want, got)
}

func TestRemoveOldestEmpty(t *testing.T) {
	q := New(2)
	_, err := q.RemoveOldest()
	assert.ErrorIs(t, err, types.ErrEmpty)
}

func TestWrapAround(t *testing.T) {
	q := New(3)
	mustAdd(t, q, "A", "x")
	mustAdd(t, q, "B", "x")
	mustAdd(t, q, "C", "x")

	p, err := q.RemoveOldest()
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	mustAdd(t, q, "D", "x") // lands in the slot A used
	assert.Equal(t, []string{"B", "C", "D"}, names(q.Snapshot()))

	_, pos, err := q.FindByID(4)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	for _, want := range []string{"B", "C", "D"} {
		p, err := q.RemoveOldest()
		require.NoError(t, err)
		assert.Equal(t, want, p.Name)
	}
	assert.Equal(t, 0, q.Len())
}

func TestFindByID(t *testing.T) {
	q := New(5)
	mustAdd(t, q, "Alice", "Fever")
	bob := mustAdd(t, q, "Bob", "Cough")

	p, pos, err := q.FindByID(bob)
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, 2, pos)

	_, _, err = q.FindByID(99)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, _, err = q.FindByID(0)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestRestore(t *testing.T) {
	q := New(3)
	mustAdd(t, q, "stale", "x")

	skipped := q.Restore([]types.Patient{
		{ID: 7, Name: "Alice", Condition: "Fever"},
		{ID: 0, Name: "NoID", Condition: "x"},
		{ID: 3, Name: "Bob", Condition: "Cough"},
		{ID: 7, Name: "Dup", Condition: "x"},
		{ID: 9, Name: "", Condition: "x"},
		{ID: 4, Name: "Carol", Condition: "Cold"},
		{ID: 12, Name: "Overflow", Condition: "x"},
	})

	assert.Equal(t, 4, skipped)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(q.Snapshot()))
	assert.Equal(t, 8, q.NextID(), "allocator resumes after the max loaded id")
}

func TestRestoreSkipsControlCharacters(t *testing.T) {
	q := New(5)
	skipped := q.Restore([]types.Patient{
		{ID: 1, Name: "Bob", Condition: "cough\n77,Mallory,forged"},
		{ID: 2, Name: "Ma\rllory", Condition: "Flu"},
		{ID: 3, Name: "Carol", Condition: "Cold"},
	})

	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{"Carol"}, names(q.Snapshot()))
}
