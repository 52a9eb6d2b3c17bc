package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChuLiYu/hospital-ops/internal/snapshot"
	"github.com/ChuLiYu/hospital-ops/pkg/types"
)

// Header is the first line of the emergency file.
const Header = "ID,Subject,Category,Priority"

// EncodeRows maps cases (ascending priority) to flat-file rows.
func EncodeRows(cases []types.EmergencyCase) [][]string {
	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			c.Subject,
			c.Category,
			strconv.Itoa(c.Priority),
		})
	}
	return rows
}

// DecodeRow parses "ID,Subject,Category,Priority".
func DecodeRow(text string) (types.EmergencyCase, error) {
	f := snapshot.Fields(text, 4)
	if len(f) < 4 {
		return types.EmergencyCase{}, fmt.Errorf("want 4 fields, got %d", len(f))
	}
	id, err := snapshot.Int(f[0])
	if err != nil {
		return types.EmergencyCase{}, fmt.Errorf("bad id %q: %w", f[0], err)
	}
	priority, err := snapshot.Int(f[3])
	if err != nil {
		return types.EmergencyCase{}, fmt.Errorf("bad priority %q: %w", f[3], err)
	}
	return types.EmergencyCase{
		ID:       id,
		Subject:  strings.TrimSpace(f[1]),
		Category: strings.TrimSpace(f[2]),
		Priority: priority,
	}, nil
}
