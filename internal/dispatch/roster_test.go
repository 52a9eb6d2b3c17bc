package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

func fleet(t *testing.T, vehicles ...string) (*Roster, []int) {
	t.Helper()
	r := New()
	ids := make([]int, 0, len(vehicles))
	for _, v := range vehicles {
		id, err := r.Register(v, "op-"+v, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return r, ids
}

func order(r *Roster) []string {
	var out []string
	for _, a := range r.Snapshot() {
		out = append(out, a.Vehicle)
	}
	return out
}

func TestRegister(t *testing.T) {
	r := New()
	id, err := r.Register("AMB-1", "Dana", "north depot, bay 2")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, types.Ambulance{ID: 1, Vehicle: "AMB-1", Operator: "Dana", Notes: "north depot, bay 2"}, head)

	_, err = r.Register("AMB-1", "Eli", "")
	assert.ErrorIs(t, err, types.ErrDuplicate)

	for _, bad := range [][3]string{
		{"", "Eli", ""},
		{"AMB-2", " ", ""},
		{"AMB,2", "Eli", ""},
		{"AMB-2", "Eli, Jr", ""},
		{"AMB\n2", "Eli", ""},
		{"AMB-2", "E\tli", ""},
		{"AMB-2", "Eli", "bay 1\n9,Forged,x,0,0,1,"},
	} {
		_, err := r.Register(bad[0], bad[1], bad[2])
		assert.ErrorIs(t, err, types.ErrInvalidInput, "%q", bad)
	}
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, r.NextID())
}

func TestRotateFullCircle(t *testing.T) {
	r, ids := fleet(t, "A", "B", "C", "D")

	before := order(r)
	for i := 1; i <= len(ids); i++ {
		head, err := r.Rotate()
		require.NoError(t, err)
		assert.Equal(t, ids[i%len(ids)], head)
	}
	assert.Equal(t, before, order(r))
}

func TestRotateMovesHeadToTail(t *testing.T) {
	r, _ := fleet(t, "A", "B", "C")

	_, err := r.Rotate()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, order(r))
}

func TestRotateRejected(t *testing.T) {
	r := New()
	_, err := r.Rotate()
	assert.ErrorIs(t, err, types.ErrEmpty)

	r, _ = fleet(t, "solo")
	_, err = r.Rotate()
	assert.ErrorIs(t, err, types.ErrSingleElement)
	assert.Equal(t, []string{"solo"}, order(r))
}

func TestRingStates(t *testing.T) {
	r := New()
	assert.Equal(t, RingEmpty, r.State())

	a, err := r.Register("A", "x", "")
	require.NoError(t, err)
	assert.Equal(t, RingSingle, r.State())

	b, err := r.Register("B", "y", "")
	require.NoError(t, err)
	assert.Equal(t, RingMulti, r.State())

	require.NoError(t, r.Remove(a))
	assert.Equal(t, RingSingle, r.State())
	require.NoError(t, r.Remove(b))
	assert.Equal(t, RingEmpty, r.State())
	assert.Equal(t, "empty", r.State().String())

	_, err = r.Head()
	assert.ErrorIs(t, err, types.ErrEmpty)
}

func TestRemove(t *testing.T) {
	t.Run("head", func(t *testing.T) {
		r, ids := fleet(t, "A", "B", "C")
		require.NoError(t, r.Remove(ids[0]))
		assert.Equal(t, []string{"B", "C"}, order(r))
	})

	t.Run("tail", func(t *testing.T) {
		r, ids := fleet(t, "A", "B", "C")
		require.NoError(t, r.Remove(ids[2]))
		assert.Equal(t, []string{"A", "B"}, order(r))

		// New registrations still land at the end.
		_, err := r.Register("D", "z", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D"}, order(r))
	})

	t.Run("middle after rotation", func(t *testing.T) {
		r, ids := fleet(t, "A", "B", "C", "D")
		_, err := r.Rotate()
		require.NoError(t, err)
		require.NoError(t, r.Remove(ids[2]))
		assert.Equal(t, []string{"B", "D", "A"}, order(r))
	})

	t.Run("unknown", func(t *testing.T) {
		r, _ := fleet(t, "A")
		assert.ErrorIs(t, r.Remove(99), types.ErrNotFound)
		assert.ErrorIs(t, New().Remove(1), types.ErrNotFound)
	})

	t.Run("slots are reused", func(t *testing.T) {
		r, ids := fleet(t, "A", "B")
		require.NoError(t, r.Remove(ids[0]))
		_, err := r.Register("C", "z", "")
		require.NoError(t, err)
		assert.Len(t, r.nodes, 2)
		assert.Equal(t, []string{"B", "C"}, order(r))
	})
}

func TestAssignShift(t *testing.T) {
	r, ids := fleet(t, "A")

	require.NoError(t, r.AssignShift(ids[0], 480, 960))
	a, err := r.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 480, a.ShiftStart)
	assert.Equal(t, 960, a.ShiftEnd)

	for _, w := range [][2]int{{960, 480}, {-1, 10}, {0, 1441}, {600, 600}} {
		assert.ErrorIs(t, r.AssignShift(ids[0], w[0], w[1]), types.ErrInvalidWindow, "%v", w)
	}
	assert.ErrorIs(t, r.AssignShift(42, 0, 60), types.ErrNotFound)

	a, err = r.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 480, a.ShiftStart, "failed assignment must not change the window")
}

func TestRefreshDutyStatus(t *testing.T) {
	r := New()
	skipped := r.Restore([]types.Ambulance{
		{ID: 1, Vehicle: "day", Operator: "a", ShiftStart: 480, ShiftEnd: 960},
		{ID: 2, Vehicle: "night", Operator: "b", ShiftStart: 1320, ShiftEnd: 360},
		{ID: 3, Vehicle: "spare", Operator: "c"},
	})
	require.Equal(t, 0, skipped)

	tests := []struct {
		now  int
		want []string
	}{
		{now: 510, want: []string{"day"}},
		{now: 30, want: []string{"night"}},
		{now: 1320, want: []string{"night"}},
		{now: 960, want: nil},
		{now: 479, want: nil},
		{now: 360, want: nil},
	}
	for _, tt := range tests {
		require.NoError(t, r.RefreshDutyStatus(tt.now))
		var got []string
		for _, a := range r.OnDuty() {
			got = append(got, a.Vehicle)
		}
		assert.Equal(t, tt.want, got, "now=%d", tt.now)
	}

	require.NoError(t, r.RefreshDutyStatus(500))
	on, err := r.IsOnDuty(1)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = r.IsOnDuty(7)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, r.RefreshDutyStatus(1440), types.ErrInvalidInput)
	assert.ErrorIs(t, r.RefreshDutyStatus(-1), types.ErrInvalidInput)
}

func TestByShiftStart(t *testing.T) {
	r, ids := fleet(t, "A", "B", "C", "D")
	require.NoError(t, r.AssignShift(ids[0], 600, 700))
	require.NoError(t, r.AssignShift(ids[1], 60, 120))
	require.NoError(t, r.AssignShift(ids[3], 60, 90))

	var got []string
	for _, a := range r.ByShiftStart() {
		got = append(got, a.Vehicle)
	}
	assert.Equal(t, []string{"C", "B", "D", "A"}, got)
	assert.Equal(t, []string{"A", "B", "C", "D"}, order(r), "rotation order is untouched")
}

func TestRestore(t *testing.T) {
	r := New()
	skipped := r.Restore([]types.Ambulance{
		{ID: 4, Vehicle: "A", Operator: "x", Notes: "n, 1"},
		{ID: 2, Vehicle: "B", Operator: "y", ShiftStart: 0, ShiftEnd: 1440, OnDuty: true},
		{ID: 4, Vehicle: "C", Operator: "z"},
		{ID: 5, Vehicle: "A", Operator: "z"},
		{ID: 6, Vehicle: "", Operator: "z"},
		{ID: 7, Vehicle: "D", Operator: "z", ShiftStart: 100, ShiftEnd: 2000},
		{ID: 0, Vehicle: "E", Operator: "z"},
	})
	assert.Equal(t, 5, skipped)
	assert.Equal(t, []string{"A", "B"}, order(r))
	assert.Equal(t, 5, r.NextID())

	b, err := r.Get(2)
	require.NoError(t, err)
	assert.True(t, b.OnDuty)
}

func TestRestoreSkipsControlCharacters(t *testing.T) {
	r := New()
	skipped := r.Restore([]types.Ambulance{
		{ID: 1, Vehicle: "A\nB", Operator: "x"},
		{ID: 2, Vehicle: "C", Operator: "y", Notes: "bay\r2"},
		{ID: 3, Vehicle: "D", Operator: "z"},
	})
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{"D"}, order(r))
}
