package admission

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChuLiYu/hospital-ops/internal/snapshot"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// Header is the first line of the patients file.
const Header = "ID,Name,Condition"

// EncodeRows maps patients to flat-file rows, preserving order.
func EncodeRows(patients []types.Patient) [][]string {
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.Condition})
	}
	return rows
}

// DecodeRow parses "ID,Name,Condition". Condition is the rest of the line.
func DecodeRow(text string) (types.Patient, error) {
	f := snapshot.Fields(text, 3)
	if len(f) < 3 {
		return types.Patient{}, fmt.Errorf("want 3 fields, got %d", len(f))
	}
	id, err := snapshot.Int(f[0])
	if err != nil {
		return types.Patient{}, fmt.Errorf("bad id %q: %w", f[0], err)
	}
	return types.Patient{
		ID:        id,
		Name:      strings.TrimSpace(f[1]),
		Condition: strings.TrimSpace(f[2]),
	}, nil
}
