package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChuLiYu/hospital-ops/internal/snapshot"
	"github.com/ChuLiYu/hospital-ops/internal/textutil"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// Header is the first line of the roster file.
const Header = "ID,Vehicle,Operator,Notes,ShiftStart,ShiftEnd,OnDuty"

// EncodeRows maps ambulances (head to tail) to flat-file rows.
func EncodeRows(roster []types.Ambulance) [][]string {
	rows := make([][]string, 0, len(roster))
	for _, a := range roster {
		rows = append(rows, []string{
			strconv.Itoa(a.ID),
			a.Vehicle,
			a.Operator,
			a.Notes,
			strconv.Itoa(a.ShiftStart),
			strconv.Itoa(a.ShiftEnd),
			snapshot.FormatBool(a.OnDuty),
		})
	}
	return rows
}

// DecodeRow parses a roster row. Two layouts are accepted:
//
//	ID,Vehicle,Operator,Notes,ShiftStart,ShiftEnd,OnDuty
//	ID,Vehicle,Operator,Notes                      (legacy, no shift columns)
//
// Notes may contain commas in both. Legacy rows get the window 0,0 and are
// off duty.
func DecodeRow(text string) (types.Ambulance, error) {
	f := strings.Split(text, textutil.Separator)
	if len(f) < 4 {
		return types.Ambulance{}, fmt.Errorf("want at least 4 fields, got %d", len(f))
	}
	id, err := snapshot.Int(f[0])
	if err != nil {
		return types.Ambulance{}, fmt.Errorf("bad id %q: %w", f[0], err)
	}

	a := types.Ambulance{
		ID:       id,
		Vehicle:  strings.TrimSpace(f[1]),
		Operator: strings.TrimSpace(f[2]),
	}

	rest := f[3:]
	if start, end, onDuty, ok := shiftColumns(rest); ok {
		a.Notes = strings.TrimSpace(strings.Join(rest[:len(rest)-3], textutil.Separator))
		a.ShiftStart, a.ShiftEnd, a.OnDuty = start, end, onDuty
		return a, nil
	}
	a.Notes = strings.TrimSpace(strings.Join(rest, textutil.Separator))
	return a, nil
}

// shiftColumns reads the three trailing shift columns when rest has room for
// notes plus all three and they are numeric.
func shiftColumns(rest []string) (start, end int, onDuty, ok bool) {
	if len(rest) < 4 {
		return 0, 0, false, false
	}
	n := len(rest)
	var err error
	if start, err = snapshot.Int(rest[n-3]); err != nil {
		return 0, 0, false, false
	}
	if end, err = snapshot.Int(rest[n-2]); err != nil {
		return 0, 0, false, false
	}
	if onDuty, err = snapshot.Bool(rest[n-1]); err != nil {
		return 0, 0, false, false
	}
	return start, end, onDuty, true
}
