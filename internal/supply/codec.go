package supply

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChuLiYu/hospital-ops/internal/snapshot"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// Header is the first line of the supplies file.
const Header = "ID,Name,Quantity,Batch,Expiry,Notes"

// EncodeRows maps supplies (top to bottom) to flat-file rows.
func EncodeRows(items []types.Supply) [][]string {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Name,
			strconv.Itoa(s.Quantity),
			s.Batch,
			s.Expiry,
			s.Notes,
		})
	}
	return rows
}

// DecodeRow parses "ID,Name,Quantity,Batch,Expiry,Notes". Notes is the rest
// of the line and may contain commas.
func DecodeRow(text string) (types.Supply, error) {
	f := snapshot.Fields(text, 6)
	if len(f) < 6 {
		return types.Supply{}, fmt.Errorf("want 6 fields, got %d", len(f))
	}
	id, err := snapshot.Int(f[0])
	if err != nil {
		return types.Supply{}, fmt.Errorf("bad id %q: %w", f[0], err)
	}
	qty, err := snapshot.Int(f[2])
	if err != nil {
		return types.Supply{}, fmt.Errorf("bad quantity %q: %w", f[2], err)
	}
	return types.Supply{
		ID:       id,
		Name:     strings.TrimSpace(f[1]),
		Quantity: qty,
		Batch:    strings.TrimSpace(f[3]),
		Expiry:   strings.TrimSpace(f[4]),
		Notes:    strings.TrimSpace(f[5]),
	}, nil
}
